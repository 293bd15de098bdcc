// Command vclrepl is an interactive shell over the interpreter: each line is
// treated as a statement appended to an implicit vcl_recv body and
// re-executed against one persistent context, so `set`/`if`/built-in calls
// can be tried one at a time. Line editing is golang.org/x/term's
// term.Terminal, the same raw-mode-adjacent approach teacher-repo-style CLIs
// reach for instead of hand-rolling input handling.
package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/vclrun/vcl/internal/driver"
	"github.com/vclrun/vcl/internal/runtime/ratelimit"
	"github.com/vclrun/vcl/internal/runtime/waf"
	"github.com/vclrun/vcl/internal/vclcontext"
	"github.com/vclrun/vcl/internal/vlog"
)

func main() {
	vlog.Configure("warning")
	waf.Init()
	ratelimit.Init()

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		runNonInteractive(os.Stdin, os.Stdout)
		return
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vclrepl: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, "vcl> ")

	ctx := vclcontext.New()
	var body string

	for {
		line, err := t.ReadLine()
		if err != nil {
			break
		}
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		body += line + "\n"
		source := "sub vcl_recv {\n" + body + "}\n"
		prog := driver.LoadVCLContent(source)
		for _, d := range prog.AST.Diagnostics {
			fmt.Fprintf(t, "parse error %d:%d: %s\r\n", d.Line, d.Column, d.Message)
		}
		ctx.Phase = vclcontext.PhaseRecv
		action, err := driver.ExecuteVCL(prog, "vcl_recv", ctx)
		if err != nil {
			fmt.Fprintf(t, "error: %v\r\n", err)
			continue
		}
		fmt.Fprintf(t, "-> %s\r\n", action)
	}
}

// runNonInteractive handles piped/non-tty input (e.g. `vclrepl < script.vcl`
// in CI): no raw mode, no prompt, just feed the whole input as one body.
func runNonInteractive(in io.Reader, out io.Writer) {
	source, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vclrepl: %v\n", err)
		os.Exit(1)
	}
	prog := driver.LoadVCLContent("sub vcl_recv {\n" + string(source) + "}\n")
	ctx := vclcontext.New()
	action, err := driver.ExecuteVCL(prog, "vcl_recv", ctx)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(out, "-> %s\n", action)
}

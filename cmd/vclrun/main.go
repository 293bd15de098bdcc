// Command vclrun loads a VCL file, runs a named subroutine against a fresh
// context, and prints the resulting action — a small example host for the
// interfaces internal/driver exposes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vclrun/vcl/internal/driver"
	"github.com/vclrun/vcl/internal/runtime/ratelimit"
	"github.com/vclrun/vcl/internal/runtime/waf"
	"github.com/vclrun/vcl/internal/vlog"
)

var appVersion = "dev"

func main() {
	var (
		showVersion bool
		logLevel    string
		subroutine  string
		url         string
		method      string
		clientIP    string
	)

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&logLevel, "log-level", "warning", "log level: debug, info, notice, warning, error")
	flag.StringVar(&subroutine, "sub", "vcl_recv", "subroutine to execute")
	flag.StringVar(&url, "url", "/", "req.url for the synthetic context")
	flag.StringVar(&method, "method", "GET", "req.method for the synthetic context")
	flag.StringVar(&clientIP, "client-ip", "127.0.0.1", "client.ip for the synthetic context")
	flag.Parse()

	if showVersion {
		fmt.Printf("vclrun %s\n", appVersion)
		return
	}

	vlog.Configure(logLevel)
	waf.Init()
	ratelimit.Init()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vclrun [flags] <file.vcl>")
		os.Exit(2)
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "vclrun: %v\n", err)
		os.Exit(1)
	}

	prog := driver.LoadVCLContent(string(source))
	for _, d := range prog.AST.Diagnostics {
		fmt.Fprintf(os.Stderr, "vclrun: %d:%d: %s\n", d.Line, d.Column, d.Message)
	}

	ctx := driver.CreateVCLContext(prog)
	ctx.Req.URL = url
	ctx.Req.Method = method
	ctx.Client.IP = clientIP

	action, err := driver.ExecuteVCL(prog, subroutine, ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vclrun: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(action)
}

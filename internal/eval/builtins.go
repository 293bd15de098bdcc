package eval

import (
	"fmt"
	"time"

	"github.com/vclrun/vcl/internal/ast"
	"github.com/vclrun/vcl/internal/runtime/acceptlang"
	"github.com/vclrun/vcl/internal/runtime/digest"
	"github.com/vclrun/vcl/internal/runtime/esi"
	"github.com/vclrun/vcl/internal/runtime/httputil"
	"github.com/vclrun/vcl/internal/runtime/queryutil"
	"github.com/vclrun/vcl/internal/runtime/random"
	"github.com/vclrun/vcl/internal/runtime/ratelimit"
	"github.com/vclrun/vcl/internal/runtime/table"
	"github.com/vclrun/vcl/internal/runtime/uuidgen"
	"github.com/vclrun/vcl/internal/runtime/vtime"
	"github.com/vclrun/vcl/internal/runtime/waf"
	"github.com/vclrun/vcl/internal/vclcontext"
)

// builtin is a registered built-in's implementation: it receives the
// context and already-evaluated arguments.
type builtin func(ctx *vclcontext.Context, args []Value) (Value, error)

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		// std.table.*
		"std.table.add":            fnTableAdd,
		"table.add":                fnTableAdd,
		"std.table.add_entry":      fnTableAddEntry,
		"table.add_entry":          fnTableAddEntry,
		"std.table.lookup":         fnTableLookup,
		"table.lookup":             fnTableLookup,
		"std.table.lookup_bool":    fnTableLookupBool,
		"table.lookup_bool":        fnTableLookupBool,
		"std.table.lookup_integer": fnTableLookupInteger,
		"table.lookup_integer":     fnTableLookupInteger,
		"std.table.lookup_float":   fnTableLookupFloat,
		"table.lookup_float":       fnTableLookupFloat,
		"std.table.lookup_regex":   fnTableLookupRegex,
		"table.lookup_regex":       fnTableLookupRegex,
		"std.table.contains":       fnTableContains,
		"table.contains":           fnTableContains,

		// waf.*
		"waf.allow":             fnWafAllow,
		"waf.block":              fnWafBlock,
		"waf.log":                fnWafLog,
		"log":                    fnWafLog,
		"waf.detect_attack":      fnDetectAttack,
		"detect_attack":          fnDetectAttack,
		"waf.rate_limit":         fnRateLimit,
		"waf.rate_limit_tokens":  fnRateLimitTokens,

		// std.ratelimit.*
		"std.ratelimit.open_window":          fnOpenWindow,
		"std.ratelimit.ratecounter_increment": fnRatecounterIncrement,
		"std.ratelimit.check_rate":           fnCheckRate,
		"check_rate":                         fnCheckRate,
		"std.ratelimit.check_rates":          fnCheckRates,
		"check_rates":                        fnCheckRates,
		"std.ratelimit.penaltybox_add":       fnPenaltyboxAdd,
		"std.ratelimit.penaltybox_has":       fnPenaltyboxHas,

		// uuid.*
		"uuid.version3":  fnUUIDVersion3,
		"uuid.version4":  fnUUIDVersion4,
		"uuid.version5":  fnUUIDVersion5,
		"uuid.dns":       fnUUIDDNS,
		"uuid.url":       fnUUIDURL,
		"uuid.is_valid":  fnUUIDIsValid,
		"uuid.is_version3": fnUUIDIsVersionFn(3),
		"uuid.is_version4": fnUUIDIsVersionFn(4),
		"uuid.is_version5": fnUUIDIsVersionFn(5),
		"uuid.decode":      fnUUIDDecode,
		"uuid.encode":      fnUUIDEncode,

		// digest.*
		"digest.hash_md5":       fnDigest(digest.HashMD5),
		"digest.hash_sha1":      fnDigest(digest.HashSHA1),
		"digest.hash_sha256":    fnDigest(digest.HashSHA256),
		"digest.base64":         fnDigest(digest.Base64Encode),
		"digest.base64url":      fnDigest(digest.Base64URLEncode),
		"digest.hex_encode":     fnDigest(digest.HexEncode),
		"digest.hmac_sha256":    fnHMACSHA256,
		"digest.secure_is_equal": fnSecureIsEqual,

		// std.random.*
		"std.random.randombool":        fnRandomBool,
		"std.random.randombool_seeded": fnRandomBoolSeeded,
		"std.random.randomint":         fnRandomInt,
		"std.random.randomint_seeded":  fnRandomIntSeeded,
		"std.random.randomstr":         fnRandomStr,

		// std.time.*
		"std.time.hex_to_time": fnHexToTime,

		// accept.*
		"accept.language_lookup": fnLanguageLookup,
		"accept.media_lookup":    fnMediaLookup,

		// std.querystring.*
		"std.querystring.get":       fnQSGet,
		"std.querystring.set":       fnQSSet,
		"std.querystring.add":       fnQSAdd,
		"std.querystring.remove":    fnQSRemove,
		"std.querystring.filtersep": fnQSFilter,
		"std.querystring.clean":     fnQSClean,

		// std.http.*
		"std.http.status_class":    fnHTTPStatusClass,
		"std.http.is_error":        fnHTTPIsError,
		"std.http.cache_control":   fnHTTPCacheControl,
		"std.http.header_contains": fnHTTPHeaderContains,
		"std.http.max_age":         fnHTTPMaxAge,

		// esi.*
		"esi.remove": fnESIRemove,
		"esi.is_esi": fnESIIsESI,
	}
}

// Call looks up name in the built-in registry and dispatches, evaluating
// args left-to-right first.
func Call(ctx *vclcontext.Context, name string, argExprs []ast.Expression) (Value, error) {
	fn, ok := builtins[name]
	if !ok {
		return Value{}, fmt.Errorf("eval: unknown function %q", name)
	}
	args := make([]Value, len(argExprs))
	for i, a := range argExprs {
		v, err := Eval(ctx, a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return fn(ctx, args)
}

func argStr(args []Value, i int) string {
	if i < len(args) {
		return args[i].Stringify()
	}
	return ""
}

func argNum(args []Value, i int) float64 {
	if i < len(args) {
		return args[i].AsNumber()
	}
	return 0
}

func argInt(args []Value, i int) int64 {
	return int64(argNum(args, i))
}

// --- std.table.* ---

func fnTableAdd(ctx *vclcontext.Context, args []Value) (Value, error) {
	ctx.Tables.Add(argStr(args, 0))
	return Null(), nil
}

func fnTableAddEntry(ctx *vclcontext.Context, args []Value) (Value, error) {
	ctx.Tables.AddEntry(argStr(args, 0), argStr(args, 1), tableValueOf(args, 2))
	return Null(), nil
}

func tableValueOf(args []Value, i int) table.Value {
	if i >= len(args) {
		return table.StringValue("")
	}
	return ToTableValue(args[i])
}

// ToTableValue converts an evaluated Value into a table.Value, preserving
// its original scalar type. Exported for the driver's
// compile step, which evaluates table-literal entries once at load time.
func ToTableValue(v Value) table.Value {
	switch v.Kind {
	case KindBool:
		return table.BoolValue(v.Bool)
	case KindInteger, KindFloat, KindDuration:
		return table.NumberValue(v.AsNumber())
	case KindRegex:
		return table.RegexValue(v.Str)
	default:
		return table.StringValue(v.Stringify())
	}
}

func fnTableLookup(ctx *vclcontext.Context, args []Value) (Value, error) {
	def := ""
	if len(args) > 2 {
		def = args[2].Stringify()
	}
	return StringValue(ctx.Tables.Lookup(argStr(args, 0), argStr(args, 1), def)), nil
}

func fnTableLookupBool(ctx *vclcontext.Context, args []Value) (Value, error) {
	def := len(args) > 2 && args[2].Truthy()
	return BoolValue(ctx.Tables.LookupBool(argStr(args, 0), argStr(args, 1), def)), nil
}

func fnTableLookupInteger(ctx *vclcontext.Context, args []Value) (Value, error) {
	var def int64
	if len(args) > 2 {
		def = int64(args[2].AsNumber())
	}
	return IntValue(ctx.Tables.LookupInteger(argStr(args, 0), argStr(args, 1), def)), nil
}

func fnTableLookupFloat(ctx *vclcontext.Context, args []Value) (Value, error) {
	var def float64
	if len(args) > 2 {
		def = args[2].AsNumber()
	}
	return FloatValue(ctx.Tables.LookupFloat(argStr(args, 0), argStr(args, 1), def)), nil
}

func fnTableLookupRegex(ctx *vclcontext.Context, args []Value) (Value, error) {
	re := ctx.Tables.LookupRegex(argStr(args, 0), argStr(args, 1))
	return RegexValue(re, re.String()), nil
}

func fnTableContains(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(ctx.Tables.Contains(argStr(args, 0), argStr(args, 1))), nil
}

// --- waf.* ---

func fnWafAllow(ctx *vclcontext.Context, args []Value) (Value, error) {
	waf.Allow()
	return Null(), nil
}

func fnWafBlock(ctx *vclcontext.Context, args []Value) (Value, error) {
	status := int(argNum(args, 0))
	message := argStr(args, 1)
	waf.Block(status, message)
	ctx.Obj.Status = status
	ctx.Obj.Response = message
	ctx.FastlyError = message
	return Value{}, &ErrorTransition{Status: status, Message: message}
}

func fnWafLog(ctx *vclcontext.Context, args []Value) (Value, error) {
	waf.LogMessage(time.Now(), argStr(args, 0))
	return Null(), nil
}

func fnDetectAttack(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(waf.DetectAttack(argStr(args, 0), waf.Kind(argStr(args, 1)))), nil
}

func fnRateLimit(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(waf.RateLimit(argStr(args, 0), int(argInt(args, 1)), argNum(args, 2))), nil
}

func fnRateLimitTokens(ctx *vclcontext.Context, args []Value) (Value, error) {
	return IntValue(int64(waf.RateLimitTokens(argStr(args, 0)))), nil
}

// --- std.ratelimit.* ---

func fnOpenWindow(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(ratelimit.OpenWindow(time.Now(), argNum(args, 0))), nil
}

func fnRatecounterIncrement(ctx *vclcontext.Context, args []Value) (Value, error) {
	return IntValue(ratelimit.RatecounterIncrement(time.Now(), argStr(args, 0), argInt(args, 1), 1000)), nil
}

func fnCheckRate(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(ratelimit.CheckRate(argStr(args, 0), argInt(args, 1))), nil
}

func fnCheckRates(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(ratelimit.CheckRates(time.Now(), argStr(args, 0), argStr(args, 1))), nil
}

func fnPenaltyboxAdd(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(ratelimit.PenaltyboxAdd(time.Now(), argStr(args, 0), argStr(args, 1), argNum(args, 2))), nil
}

func fnPenaltyboxHas(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(ratelimit.PenaltyboxHas(time.Now(), argStr(args, 0), argStr(args, 1))), nil
}

// --- uuid.* ---

func fnUUIDVersion3(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(uuidgen.V3(argStr(args, 0), argStr(args, 1))), nil
}

func fnUUIDVersion4(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(uuidgen.V4()), nil
}

func fnUUIDVersion5(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(uuidgen.V5(argStr(args, 0), argStr(args, 1))), nil
}

func fnUUIDDNS(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(uuidgen.V5(uuidgen.DNSNamespace.String(), argStr(args, 0))), nil
}

func fnUUIDURL(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(uuidgen.V5(uuidgen.URLNamespace.String(), argStr(args, 0))), nil
}

func fnUUIDIsValid(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(uuidgen.IsValid(argStr(args, 0))), nil
}

func fnUUIDIsVersionFn(version int) builtin {
	return func(ctx *vclcontext.Context, args []Value) (Value, error) {
		return BoolValue(uuidgen.Version(argStr(args, 0)) == version), nil
	}
}

func fnUUIDDecode(ctx *vclcontext.Context, args []Value) (Value, error) {
	raw, ok := uuidgen.Decode(argStr(args, 0))
	if !ok {
		return Null(), fmt.Errorf("uuid.decode: invalid uuid %q", argStr(args, 0))
	}
	return StringValue(raw), nil
}

func fnUUIDEncode(ctx *vclcontext.Context, args []Value) (Value, error) {
	s, ok := uuidgen.Encode(argStr(args, 0))
	if !ok {
		return Null(), fmt.Errorf("uuid.encode: expected a 16-byte sequence")
	}
	return StringValue(s), nil
}

// --- digest.* ---

func fnDigest(f func(string) string) builtin {
	return func(ctx *vclcontext.Context, args []Value) (Value, error) {
		return StringValue(f(argStr(args, 0))), nil
	}
}

func fnHMACSHA256(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(digest.HMACSHA256Hex(argStr(args, 0), argStr(args, 1))), nil
}

func fnSecureIsEqual(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(digest.SecureIsEqual(argStr(args, 0), argStr(args, 1))), nil
}

// --- std.random.* ---

func fnRandomBool(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(random.Bool(argNum(args, 0))), nil
}

func fnRandomBoolSeeded(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(random.BoolSeeded(argNum(args, 0), int64(argNum(args, 1)))), nil
}

func fnRandomInt(ctx *vclcontext.Context, args []Value) (Value, error) {
	return IntValue(random.Int(argInt(args, 0), argInt(args, 1))), nil
}

func fnRandomIntSeeded(ctx *vclcontext.Context, args []Value) (Value, error) {
	return IntValue(random.IntSeeded(argInt(args, 0), argInt(args, 1), argInt(args, 2))), nil
}

func fnRandomStr(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(random.Str(int(argInt(args, 0)), argStr(args, 1))), nil
}

// --- std.time.* ---

func fnHexToTime(ctx *vclcontext.Context, args []Value) (Value, error) {
	t, err := vtime.HexToTime(argStr(args, 0))
	if err != nil {
		return Null(), err
	}
	return IntValue(t.Unix()), nil
}

// --- accept.* ---

func fnLanguageLookup(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(acceptlang.LanguageLookup(argStr(args, 2), argStr(args, 0), argStr(args, 1))), nil
}

func fnMediaLookup(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(acceptlang.MediaLookup(argStr(args, 2), argStr(args, 0), argStr(args, 1))), nil
}

// --- std.querystring.* ---

func fnQSGet(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(queryutil.Get(argStr(args, 0), argStr(args, 1))), nil
}

func fnQSSet(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(queryutil.Set(argStr(args, 0), argStr(args, 1), argStr(args, 2))), nil
}

func fnQSAdd(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(queryutil.Add(argStr(args, 0), argStr(args, 1), argStr(args, 2))), nil
}

func fnQSRemove(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(queryutil.Remove(argStr(args, 0), argStr(args, 1))), nil
}

func fnQSFilter(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(queryutil.Filter(argStr(args, 0), argStr(args, 1), argStr(args, 2))), nil
}

func fnQSClean(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(queryutil.Clean(argStr(args, 0))), nil
}

// --- std.http.* ---

func fnHTTPStatusClass(ctx *vclcontext.Context, args []Value) (Value, error) {
	return IntValue(int64(httputil.StatusClass(int(argInt(args, 0))))), nil
}

func fnHTTPIsError(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(httputil.IsError(int(argInt(args, 0)))), nil
}

func fnHTTPCacheControl(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(httputil.CacheControlDirective(argStr(args, 0), argStr(args, 1))), nil
}

func fnHTTPHeaderContains(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(httputil.HeaderContains(argStr(args, 0), argStr(args, 1))), nil
}

func fnHTTPMaxAge(ctx *vclcontext.Context, args []Value) (Value, error) {
	return IntValue(int64(httputil.ParseMaxAge(argStr(args, 0)))), nil
}

// --- esi.* ---

func fnESIRemove(ctx *vclcontext.Context, args []Value) (Value, error) {
	return StringValue(esi.Remove(argStr(args, 0))), nil
}

func fnESIIsESI(ctx *vclcontext.Context, args []Value) (Value, error) {
	return BoolValue(esi.HasESI(argStr(args, 0))), nil
}

package livescript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	lua "github.com/yuin/gopher-lua"

	"github.com/matzehuels/lightlayer/pkg/core/lights"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

// Extension marks node names resolved as scripts.
const Extension = ".lua"

// DefaultTimeout bounds every call into a script.
const DefaultTimeout = 50 * time.Millisecond

// Loader returns the source of the script called name.
type Loader func(name string) ([]byte, error)

// DirLoader loads scripts from files in dir. Names must stay inside dir.
func DirLoader(dir string) Loader {
	return func(name string) ([]byte, error) {
		if !filepath.IsLocal(name) {
			return nil, lerrors.New(lerrors.ErrCodeInvalidInput, "script name %q escapes the script directory", name)
		}
		return os.ReadFile(filepath.Join(dir, name))
	}
}

// MapLoader serves scripts from memory.
func MapLoader(scripts map[string]string) Loader {
	return func(name string) ([]byte, error) {
		src, ok := scripts[name]
		if !ok {
			return nil, lerrors.New(lerrors.ErrCodeNotFound, "no script %q", name)
		}
		return []byte(src), nil
	}
}

// IsScript reports whether name refers to a script.
func IsScript(name string) bool { return strings.HasSuffix(name, Extension) }

// Option configures a Script.
type Option func(*Script)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Script) { s.timeout = d }
}

// Fallback returns a registry fallback creating a Script for every name
// ending in ".lua".
func Fallback(load Loader, opts ...Option) node.Fallback {
	return func(name string) (node.Node, bool) {
		if !IsScript(name) {
			return nil, false
		}
		return New(name, load, opts...), true
	}
}

// Script is a node whose behavior is defined in Lua.
type Script struct {
	name    string
	load    Loader
	timeout time.Duration

	L        *lua.LState
	host     node.Host
	controls node.Controls
	builder  node.Builder
	frame    int
	failed   bool
}

// New returns an unconstructed script node.
func New(name string, load Loader, opts ...Option) *Script {
	s := &Script{name: name, load: load, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the script file name.
func (s *Script) Name() string { return s.name }

// Failed reports whether the script was disabled by a runtime error.
func (s *Script) Failed() bool { return s.failed }

func (s *Script) Construct(h node.Host, c node.Controls) error {
	src, err := s.load(s.name)
	if err != nil {
		return lerrors.Wrap(lerrors.ErrCodeScript, err, "load %s", s.name)
	}
	s.host, s.controls = h, c
	s.L = newState()
	s.install()

	err = s.run(func() error { return s.L.DoString(string(src)) })
	if err != nil {
		s.Release()
		return lerrors.Wrap(lerrors.ErrCodeScript, err, "run %s", s.name)
	}
	return nil
}

func (s *Script) Setup() {
	s.frame = 0
	s.failed = false
	if err := s.call("setup"); err != nil {
		s.fail("setup", err)
	}
}

func (s *Script) Loop() {
	if s.failed || s.L == nil {
		return
	}
	if err := s.call("loop"); err != nil {
		s.fail("loop", err)
		return
	}
	s.frame++
}

// AddLayout runs the script's addLayout function with addLight and addPin
// bound to b.
func (s *Script) AddLayout(b node.Builder) error {
	if s.L == nil {
		return nil
	}
	s.builder = b
	defer func() { s.builder = nil }()
	if err := s.call("addLayout"); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeScript, err, "%s addLayout", s.name)
	}
	return nil
}

// Release closes the Lua state.
func (s *Script) Release() {
	if s.L != nil {
		s.L.Close()
		s.L = nil
	}
}

func (s *Script) fail(fn string, err error) {
	s.failed = true
	s.host.Logger().Error("script disabled", "script", s.name, "func", fn, "err", err)
}

// call invokes the global fn if the script defines it.
func (s *Script) call(fn string) error {
	if s.L == nil {
		return nil
	}
	f := s.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return nil
	}
	return s.run(func() error {
		return s.L.CallByParam(lua.P{Fn: f, NRet: 0, Protect: true})
	})
}

// run executes fn under the call timeout, turning panics into errors.
func (s *Script) run(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// newState opens a state with the safe libraries only.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func (s *Script) install() {
	funcs := map[string]lua.LGFunction{
		"size":      s.luaSize,
		"lights":    s.luaLights,
		"setRGB":    s.luaSetRGB,
		"setRGBXYZ": s.luaSetRGBXYZ,
		"fill":      s.luaFill,
		"hsv":       luaHSV,
		"control":   s.luaControl,
		"frame":     s.luaFrame,
		"addLight":  s.luaAddLight,
		"addPin":    s.luaAddPin,
		"print":     s.luaPrint,
	}
	for name, fn := range funcs {
		s.L.SetGlobal(name, s.L.NewFunction(fn))
	}
}

func (s *Script) luaSize(L *lua.LState) int {
	sz := s.host.Size()
	L.Push(lua.LNumber(sz.X))
	L.Push(lua.LNumber(sz.Y))
	L.Push(lua.LNumber(sz.Z))
	return 3
}

func (s *Script) luaLights(L *lua.LState) int {
	L.Push(lua.LNumber(s.host.LightCount()))
	return 1
}

func (s *Script) luaSetRGB(L *lua.LState) int {
	s.host.SetRGB(L.CheckInt(1), checkRGB(L, 2))
	return 0
}

func (s *Script) luaSetRGBXYZ(L *lua.LState) int {
	pos := lights.Coord3D{X: L.CheckInt(1), Y: L.CheckInt(2), Z: L.CheckInt(3)}
	s.host.SetRGBAt(pos, checkRGB(L, 4))
	return 0
}

func (s *Script) luaFill(L *lua.LState) int {
	s.host.Fill(checkRGB(L, 1))
	return 0
}

func luaHSV(L *lua.LState) int {
	h := float64(L.CheckNumber(1))
	sat := float64(L.OptNumber(2, 1))
	val := float64(L.OptNumber(3, 1))
	r, g, b := colorful.Hsv(h, sat, val).Clamped().RGB255()
	L.Push(lua.LNumber(r))
	L.Push(lua.LNumber(g))
	L.Push(lua.LNumber(b))
	return 3
}

func (s *Script) luaControl(L *lua.LState) int {
	name := L.CheckString(1)
	def := float64(L.OptNumber(2, 0))
	L.Push(lua.LNumber(s.controls.Float(name, def)))
	return 1
}

func (s *Script) luaFrame(L *lua.LState) int {
	L.Push(lua.LNumber(s.frame))
	return 1
}

func (s *Script) luaAddLight(L *lua.LState) int {
	if s.builder == nil {
		L.RaiseError("addLight called outside addLayout")
		return 0
	}
	pos := lights.Coord3D{X: L.CheckInt(1), Y: L.CheckInt(2), Z: L.CheckInt(3)}
	if err := s.builder.AddLight(pos); err != nil {
		L.RaiseError("addLight: %v", err)
	}
	return 0
}

func (s *Script) luaAddPin(L *lua.LState) int {
	if s.builder == nil {
		L.RaiseError("addPin called outside addLayout")
		return 0
	}
	if err := s.builder.AddPin(uint8(L.CheckInt(1))); err != nil {
		L.RaiseError("addPin: %v", err)
	}
	return 0
}

func (s *Script) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.host.Logger().Info(strings.Join(parts, " "), "script", s.name)
	return 0
}

func checkRGB(L *lua.LState, at int) lights.RGB {
	return lights.RGB{
		R: clampByte(L.CheckInt(at)),
		G: clampByte(L.CheckInt(at + 1)),
		B: clampByte(L.CheckInt(at + 2)),
	}
}

func clampByte(v int) uint8 { return uint8(min(max(v, 0), 255)) }

var (
	_ node.Layout   = (*Script)(nil)
	_ node.Releaser = (*Script)(nil)
)

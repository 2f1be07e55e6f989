package shader

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// Compiler turns WGSL source into a SPIR-V binary.
type Compiler interface {
	Compile(source string) ([]byte, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(source string) ([]byte, error)

// Compile calls f(source).
func (f CompilerFunc) Compile(source string) ([]byte, error) { return f(source) }

// Naga compiles WGSL with the pure-Go naga compiler.
var Naga Compiler = CompilerFunc(naga.Compile)

// Program is a compiled effect shader. Programs are created and owned by
// a ProgramCache and are safe to share between goroutines; callers must
// not modify the slice returned by SPIRV.
type Program struct {
	key    Key
	source string
	spirv  []uint32
	hash   uint64
}

// Key returns the cache key the program was compiled for.
func (p *Program) Key() Key { return p.key }

// Ref returns the source ref.
func (p *Program) Ref() string { return p.key.Ref }

// Defines returns the structural values baked into the program.
func (p *Program) Defines() map[string]int { return p.key.Defines() }

// Source returns the WGSL text that was compiled.
func (p *Program) Source() string { return p.source }

// SPIRV returns the compiled module as little-endian 32-bit words.
func (p *Program) SPIRV() []uint32 { return p.spirv }

// Hash returns an xxhash of the compiled module.
func (p *Program) Hash() uint64 { return p.hash }

// CompileError reports a shader that failed to build.
type CompileError struct {
	Key Key
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader: compile %s: %v", e.Key, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// IsCompileError reports whether err is or wraps a *CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

func compile(c Compiler, key Key) (*Program, error) {
	src, err := Source(key)
	if err != nil {
		return nil, &CompileError{Key: key, Err: err}
	}
	bin, err := c.Compile(src)
	if err != nil {
		return nil, &CompileError{Key: key, Err: err}
	}
	words, err := toWords(bin)
	if err != nil {
		return nil, &CompileError{Key: key, Err: err}
	}
	return &Program{
		key:    key,
		source: src,
		spirv:  words,
		hash:   xxhash.Sum64(bin),
	}, nil
}

// toWords converts a SPIR-V byte stream into words, checking the magic.
func toWords(b []byte) ([]uint32, error) {
	if len(b) < 4 || len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid SPIR-V length %d", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("invalid SPIR-V magic 0x%08X", words[0])
	}
	return words, nil
}

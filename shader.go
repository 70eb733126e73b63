package grafica

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"
)

// EntryPoint is the function name both shader stages must export.
const EntryPoint = "main"

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// Shader is one compiled stage: the WGSL it came from and its SPIR-V.
type Shader struct {
	Label string
	Stage gputypes.ShaderStage
	WGSL  string
	SPIRV []uint32
}

// LoadShader reads a WGSL file and compiles it for stage.
// Read failures and non-UTF-8 content wrap ErrShaderRead.
func LoadShader(path string, stage gputypes.ShaderStage, debug bool) (*Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderRead, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrShaderRead, path)
	}
	return CompileShader(path, string(data), stage, debug)
}

// CompileShader compiles WGSL source to SPIR-V and checks that it exports a
// `main` entry point for stage. Every failure wraps ErrShaderCompile.
func CompileShader(label, source string, stage gputypes.ShaderStage, debug bool) (*Shader, error) {
	want, err := irStage(stage)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: lowering: %w", ErrShaderCompile, label, err)
	}
	if !hasEntryPoint(module, EntryPoint, want) {
		return nil, fmt.Errorf("%w: %s: no %s entry point %q", ErrShaderCompile, label, stageName(stage), EntryPoint)
	}

	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: validation: %w", ErrShaderCompile, label, err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("%w: %s: validation: %w", ErrShaderCompile, label, &verrs[0])
	}

	code, err := naga.GenerateSPIRV(module, spirv.Options{
		Version: spirv.Version1_3,
		Debug:   debug,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}
	words, err := spirvWords(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}

	Logger().Debug("grafica: shader compiled",
		"label", label,
		"stage", stageName(stage),
		"words", len(words))

	return &Shader{Label: label, Stage: stage, WGSL: source, SPIRV: words}, nil
}

func irStage(stage gputypes.ShaderStage) (ir.ShaderStage, error) {
	switch stage {
	case gputypes.ShaderStageVertex:
		return ir.StageVertex, nil
	case gputypes.ShaderStageFragment:
		return ir.StageFragment, nil
	}
	return 0, fmt.Errorf("unsupported shader stage %d", stage)
}

func stageName(stage gputypes.ShaderStage) string {
	switch stage {
	case gputypes.ShaderStageVertex:
		return "vertex"
	case gputypes.ShaderStageFragment:
		return "fragment"
	}
	return "unknown"
}

func hasEntryPoint(m *ir.Module, name string, stage ir.ShaderStage) bool {
	for _, ep := range m.EntryPoints {
		if ep.Name == name && ep.Stage == stage {
			return true
		}
	}
	return false
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V length %d is not a positive multiple of 4", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("bad SPIR-V magic %#08x", words[0])
	}
	return words, nil
}

package corevm

import (
	"context"
	"fmt"
	"reflect"

	"github.com/wazerocore/corevm/api"
	"github.com/wazerocore/corevm/internal/wasm"
)

// funcDefinition adapts a *wasm.FunctionInstance to api.FunctionDefinition.
type funcDefinition struct{ fn *wasm.FunctionInstance }

func (d funcDefinition) ModuleName() string { return d.fn.ModuleName }
func (d funcDefinition) Index() uint32      { return d.fn.Index }
func (d funcDefinition) Name() string       { return d.fn.Name }
func (d funcDefinition) DebugName() string  { return d.fn.DebugName() }

func (d funcDefinition) Import() (moduleName, name string, isImport bool) {
	if d.fn.Kind == wasm.FunctionKindDefined {
		return "", "", false
	}
	return d.fn.ModuleName, d.fn.Name, true
}

func (d funcDefinition) ExportNames() []string {
	if d.fn.ExportName == "" {
		return nil
	}
	return []string{d.fn.ExportName}
}

func (d funcDefinition) GoFunc() *reflect.Value    { return d.fn.GoFuncValue }
func (d funcDefinition) ParamTypes() []api.ValueType  { return d.fn.Type.Params }
func (d funcDefinition) ParamNames() []string         { return nil }
func (d funcDefinition) ResultTypes() []api.ValueType { return d.fn.Type.Results }

// hostFunction adapts a *wasm.FunctionInstance plus the Store/Instance
// needed to invoke it into api.Function.
type hostFunction struct {
	store *wasm.Store
	fn    *wasm.FunctionInstance
	inst  *wasm.Instance
}

func (f *hostFunction) Definition() api.FunctionDefinition { return funcDefinition{fn: f.fn} }

func (f *hostFunction) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return wasm.Call(ctx, f.store, f.inst, f.fn, params)
}

// hostTable adapts *wasm.TableInstance into api.Table.
type hostTable struct {
	store *wasm.Store
	tbl   *wasm.TableInstance
}

func (t *hostTable) Type() api.ValueType { return api.ValueType(t.tbl.Ty().Element) }
func (t *hostTable) Size(context.Context) uint32 { return t.tbl.Size() }

func (t *hostTable) Grow(ctx context.Context, delta uint32, init uint64) (previous uint32, ok bool) {
	var elem wasm.TableElement
	if t.tbl.Ty().Element == wasm.RefTypeExternref {
		elem.ExternRef = init
	}
	return t.tbl.Grow(delta, elem)
}

// hostMemory adapts *wasm.MemoryInstance into api.Memory.
type hostMemory struct{ mem *wasm.MemoryInstance }

func (m *hostMemory) Size(context.Context) uint32 { return uint32(m.mem.Size()) * wasm.Page }

func (m *hostMemory) Grow(ctx context.Context, deltaPages uint32) (previousPages uint32, ok bool) {
	prev, err := m.mem.Grow(deltaPages)
	if err != nil {
		return 0, false
	}
	return prev, true
}

func (m *hostMemory) view() wasm.VMMemoryDefinition { return m.mem.VMMemory() }

func (m *hostMemory) ReadByte(ctx context.Context, offset uint32) (byte, bool) {
	buf, ok := m.Read(ctx, offset, 1)
	if !ok {
		return 0, false
	}
	return buf[0], true
}

func (m *hostMemory) ReadUint16Le(ctx context.Context, offset uint32) (uint16, bool) {
	buf, ok := m.Read(ctx, offset, 2)
	if !ok {
		return 0, false
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, true
}

func (m *hostMemory) ReadUint32Le(ctx context.Context, offset uint32) (uint32, bool) {
	buf, ok := m.Read(ctx, offset, 4)
	if !ok {
		return 0, false
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, true
}

func (m *hostMemory) ReadUint64Le(ctx context.Context, offset uint32) (uint64, bool) {
	buf, ok := m.Read(ctx, offset, 8)
	if !ok {
		return 0, false
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(buf[i]) << (8 * i)
	}
	return v, true
}

func (m *hostMemory) ReadFloat32Le(ctx context.Context, offset uint32) (float32, bool) {
	v, ok := m.ReadUint32Le(ctx, offset)
	if !ok {
		return 0, false
	}
	return api.DecodeF32(uint64(v)), true
}

func (m *hostMemory) ReadFloat64Le(ctx context.Context, offset uint32) (float64, bool) {
	v, ok := m.ReadUint64Le(ctx, offset)
	if !ok {
		return 0, false
	}
	return api.DecodeF64(v), true
}

func (m *hostMemory) Read(ctx context.Context, offset, byteCount uint32) ([]byte, bool) {
	def := m.view()
	end := uint64(offset) + uint64(byteCount)
	if end > def.CurrentLength {
		return nil, false
	}
	return def.Base[offset:end], true
}

func (m *hostMemory) WriteByte(ctx context.Context, offset uint32, v byte) bool {
	return m.Write(ctx, offset, []byte{v})
}

func (m *hostMemory) WriteUint16Le(ctx context.Context, offset uint32, v uint16) bool {
	return m.Write(ctx, offset, []byte{byte(v), byte(v >> 8)})
}

func (m *hostMemory) WriteUint32Le(ctx context.Context, offset, v uint32) bool {
	return m.Write(ctx, offset, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

func (m *hostMemory) WriteUint64Le(ctx context.Context, offset uint32, v uint64) bool {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return m.Write(ctx, offset, buf)
}

func (m *hostMemory) WriteFloat32Le(ctx context.Context, offset uint32, v float32) bool {
	return m.WriteUint32Le(ctx, offset, uint32(api.EncodeF32(v)))
}

func (m *hostMemory) WriteFloat64Le(ctx context.Context, offset uint32, v float64) bool {
	return m.WriteUint64Le(ctx, offset, api.EncodeF64(v))
}

func (m *hostMemory) Write(ctx context.Context, offset uint32, v []byte) bool {
	def := m.view()
	end := uint64(offset) + uint64(len(v))
	if end > def.CurrentLength {
		return false
	}
	copy(def.Base[offset:end], v)
	return true
}

// hostGlobal adapts an immutable *wasm.GlobalInstance into api.Global.
type hostGlobal struct{ g *wasm.GlobalInstance }

func (g *hostGlobal) String() string          { return fmt.Sprintf("Global(%d)", g.g.Get()) }
func (g *hostGlobal) Type() api.ValueType      { return g.g.Type().Content }
func (g *hostGlobal) Get(context.Context) uint64 { return g.g.Get() }

// hostMutableGlobal additionally adapts api.MutableGlobal.
type hostMutableGlobal struct{ g *wasm.GlobalInstance }

func (g *hostMutableGlobal) String() string            { return fmt.Sprintf("Global(%d)", g.g.Get()) }
func (g *hostMutableGlobal) Type() api.ValueType         { return g.g.Type().Content }
func (g *hostMutableGlobal) Get(context.Context) uint64  { return g.g.Get() }
func (g *hostMutableGlobal) Set(ctx context.Context, v uint64) { g.g.Set(v) }

package contracts

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/*.json
var abiFS embed.FS

// Mutability изменяемость функции контракта
type Mutability string

const (
	MutabilityView       Mutability = "view"
	MutabilityPure       Mutability = "pure"
	MutabilityNonPayable Mutability = "nonpayable"
	MutabilityPayable    Mutability = "payable"
)

// StateChanging сообщает, требует ли вызов подписанной транзакции
func (m Mutability) StateChanging() bool {
	return m == MutabilityNonPayable || m == MutabilityPayable
}

type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Function описание функции контракта
type Function struct {
	Name       string     `json:"name"`
	Inputs     []Param    `json:"inputs"`
	Outputs    []Param    `json:"outputs"`
	Mutability Mutability `json:"mutability"`
}

// Binding типизированное описание развёрнутого контракта
type Binding struct {
	Name string
	// Verified false означает, что ABI не сверен с развёрнутым контрактом
	Verified bool
	abi      abi.ABI
}

// Parse разбирает JSON ABI
func Parse(name string, raw []byte, verified bool) (*Binding, error) {
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, apperr.New(apperr.KindEncoding, "parse "+name+" abi", err)
	}
	return &Binding{Name: name, Verified: verified, abi: parsed}, nil
}

func mustLoad(name, file string, verified bool) *Binding {
	raw, err := abiFS.ReadFile("abi/" + file)
	if err != nil {
		panic(fmt.Sprintf("read embedded abi %s: %v", file, err))
	}
	b, err := Parse(name, raw, verified)
	if err != nil {
		panic(err)
	}
	return b
}

// ABI возвращает разобранный ABI
func (b *Binding) ABI() abi.ABI {
	return b.abi
}

// Function возвращает описание функции по имени
func (b *Binding) Function(name string) (Function, bool) {
	method, ok := b.abi.Methods[name]
	if !ok {
		return Function{}, false
	}

	fn := Function{
		Name:       method.RawName,
		Mutability: Mutability(method.StateMutability),
		Inputs:     make([]Param, 0, len(method.Inputs)),
		Outputs:    make([]Param, 0, len(method.Outputs)),
	}
	for _, in := range method.Inputs {
		fn.Inputs = append(fn.Inputs, Param{Name: in.Name, Type: in.Type.String()})
	}
	for _, out := range method.Outputs {
		fn.Outputs = append(fn.Outputs, Param{Name: out.Name, Type: out.Type.String()})
	}
	return fn, true
}

// Functions возвращает все функции контракта
func (b *Binding) Functions() []Function {
	fns := make([]Function, 0, len(b.abi.Methods))
	for name := range b.abi.Methods {
		fn, _ := b.Function(name)
		fns = append(fns, fn)
	}
	return fns
}

// Pack кодирует вызов; несовпадение арности или типов даёт ошибку encoding
func (b *Binding) Pack(method string, args ...interface{}) ([]byte, error) {
	op := b.Name + "." + method

	m, ok := b.abi.Methods[method]
	if !ok {
		return nil, apperr.New(apperr.KindEncoding, op, fmt.Errorf("method not found in binding"))
	}
	if len(args) != len(m.Inputs) {
		return nil, apperr.New(apperr.KindEncoding, op,
			fmt.Errorf("expected %d arguments, got %d", len(m.Inputs), len(args)))
	}

	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, apperr.New(apperr.KindEncoding, op, err)
	}
	return data, nil
}

// Unpack декодирует возвращаемые значения
func (b *Binding) Unpack(method string, data []byte) ([]interface{}, error) {
	op := b.Name + "." + method

	m, ok := b.abi.Methods[method]
	if !ok {
		return nil, apperr.New(apperr.KindEncoding, op, fmt.Errorf("method not found in binding"))
	}

	values, err := m.Outputs.Unpack(data)
	if err != nil {
		return nil, apperr.New(apperr.KindEncoding, op, err)
	}
	if len(values) != len(m.Outputs) {
		return nil, apperr.New(apperr.KindEncoding, op,
			fmt.Errorf("expected %d outputs, got %d", len(m.Outputs), len(values)))
	}
	return values, nil
}

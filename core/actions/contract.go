package actions

import (
	"errors"
	"fmt"

	"github.com/hacash/node/core/types"
)

var errVMNotSupported = errors.New("vm not supported")

// ContractCall hands code and param to the contract VM of the transaction.
type ContractCall struct {
	Mode     types.Uint1
	CodeKind types.Uint1
	Code     types.BytesW2
	Param    types.BytesW2
}

func (a *ContractCall) Kind() uint16               { return KindContractCall }
func (a *ContractCall) Level() types.ActLv         { return types.ActLvContractCall }
func (a *ContractCall) Burn90() bool               { return false }
func (a *ContractCall) ReqSign() []types.AddrOrPtr { return nil }

func (a *ContractCall) Describe() string {
	return fmt.Sprintf("Contract call mode %d kind %d code %d bytes", a.Mode, a.CodeKind, len(a.Code))
}

func (a *ContractCall) Parse(buf []byte) (int, error) {
	return types.ParseActionBody(KindContractCall, buf, &a.Mode, &a.CodeKind, &a.Code, &a.Param)
}
func (a *ContractCall) Serialize() []byte {
	return types.SerializeActionBody(KindContractCall, &a.Mode, &a.CodeKind, &a.Code, &a.Param)
}
func (a *ContractCall) Size() int { return types.ActionBodySize(&a.Mode, &a.CodeKind, &a.Code, &a.Param) }

func (a *ContractCall) Execute(ctx types.Context) ([]byte, error) {
	vm := ctx.VM()
	if vm == nil || !vm.Usable() {
		return nil, errVMNotSupported
	}
	depth := ctx.Depth()
	ctx.SetDepth(depth + 1)
	defer ctx.SetDepth(depth)
	_, ret, err := vm.Call(ctx, ctx.State(), types.CallMode(a.Mode), uint8(a.CodeKind), a.Code, a.Param)
	return ret, err
}

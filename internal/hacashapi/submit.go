package hacashapi

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hacash/node/common"
	"github.com/hacash/node/core/actions"
	"github.com/hacash/node/core/types"
	"github.com/hacash/node/log"
)

func (s *Server) submitTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		sendError(w, fmt.Sprintf("transaction body error: %v", err))
		return
	}
	pkg, err := types.ParseTxPkg(s.backend.Capabilities().Registry, body)
	if err != nil {
		sendError(w, fmt.Sprintf("transaction parse error: %v", err))
		return
	}
	if err := pkg.Tx.VerifySignature(); err != nil {
		sendError(w, fmt.Sprintf("transaction sign error: %v", err))
		return
	}
	cnf := s.backend.Config()
	if pkg.FeePurity < cnf.LowestFeePurity {
		sendError(w, fmt.Sprintf("The transaction fee purity %d is too low, the node minimum configuration is %d.",
			pkg.FeePurity, cnf.LowestFeePurity))
		return
	}
	if len(pkg.Data) > cnf.MaxTxSize {
		sendError(w, fmt.Sprintf("tx size cannot more than %d bytes", cnf.MaxTxSize))
		return
	}
	if err := s.backend.SubmitTx(pkg); err != nil {
		sendError(w, err.Error())
		return
	}
	if s.relay != nil {
		s.relay.RelayTx(pkg)
	}
	s.logger.WithFields(log.Fields{"tx": pkg.Hash, "size": len(pkg.Data)}).Debug("Transaction submitted")
	sendData(w, jsonData{"hash": pkg.Hash.Hex()})
}

func (s *Server) submitBlock(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		sendError(w, fmt.Sprintf("block body error: %v", err))
		return
	}
	caps := s.backend.Capabilities()
	pkg, err := types.NewBlockPkg(caps.Registry, caps.Hasher, body, types.BlkOriginDiscover)
	if err != nil {
		sendError(w, fmt.Sprintf("block parse error: %v", err))
		return
	}
	if s.relay != nil {
		err = s.relay.SubmitBlock(pkg.Data)
	} else {
		err = s.backend.Discover(pkg)
	}
	if err != nil {
		sendError(w, fmt.Sprintf("submit block error: %v", err))
		return
	}
	sendOK(w)
}

// accountFrom reads a private key in hex, or else treats the value as a
// password.
func accountFrom(v string) (*types.Account, error) {
	if v == "" {
		return nil, fmt.Errorf("private key empty")
	}
	if len(v) == 64 {
		if secret, err := hex.DecodeString(v); err == nil {
			return types.NewAccountFromSecret(secret)
		}
	}
	return types.NewAccountFromPassword(v), nil
}

// createTransfer builds and signs a type 2 transfer of hacash, satoshi
// and diamonds without submitting it.
func (s *Server) createTransfer(w http.ResponseWriter, r *http.Request) {
	reg := s.backend.Capabilities().Registry
	to, err := common.ParseAddress(qString(r, "to_address", ""))
	if err != nil {
		sendError(w, fmt.Sprintf("to_address format error: %v", err))
		return
	}
	fee, err := types.ParseAmount(qString(r, "fee", ""))
	if err != nil {
		sendError(w, fmt.Sprintf("fee format error: %v", err))
		return
	}
	mainAcc, err := accountFrom(qString(r, "main_prikey", ""))
	if err != nil {
		sendError(w, fmt.Sprintf("main_prikey error: %v", err))
		return
	}
	fromAcc := mainAcc
	if v := qString(r, "from_prikey", ""); v != "" {
		if fromAcc, err = accountFrom(v); err != nil {
			sendError(w, fmt.Sprintf("from_prikey error: %v", err))
			return
		}
	}
	isFrom := fromAcc.Address != mainAcc.Address
	ts := qUint(r, "timestamp", uint64(time.Now().Unix()))
	tx := types.NewNormalTx(reg, types.TxType2, mainAcc.Address, fee, ts)
	toPtr := types.AddrOrPtrFromAddress(to)
	fromPtr := types.AddrOrPtrFromAddress(fromAcc.Address)

	var acts []types.Action
	if sat := qUint(r, "satoshi", 0); sat > 0 {
		if isFrom {
			acts = append(acts, &actions.SatFromToTrs{From: fromPtr, To: toPtr, Satoshi: types.Fold64(sat)})
		} else {
			acts = append(acts, &actions.SatToTrs{To: toPtr, Satoshi: types.Fold64(sat)})
		}
	}
	if raw := qString(r, "diamonds", ""); len(raw) >= len(types.DiamondName{}) {
		list, err := types.DiamondNameListFromString(raw)
		if err != nil {
			sendError(w, fmt.Sprintf("diamonds error: %v", err))
			return
		}
		switch {
		case isFrom:
			acts = append(acts, &actions.DiaFromToTrs{From: fromPtr, To: toPtr, Diamonds: list})
		case list.Len() == 1:
			acts = append(acts, &actions.DiaSingleTrs{Diamond: list.Items[0], To: toPtr})
		default:
			acts = append(acts, &actions.DiaToTrs{To: toPtr, Diamonds: list})
		}
	}
	if raw := strings.TrimSpace(qString(r, "hacash", "")); raw != "" {
		hac, err := types.ParseAmount(raw)
		if err != nil {
			sendError(w, fmt.Sprintf("hacash amount %s error: %v", raw, err))
			return
		}
		if isFrom {
			acts = append(acts, &actions.HacFromToTrs{From: fromPtr, To: toPtr, Hacash: hac})
		} else {
			acts = append(acts, &actions.HacToTrs{To: toPtr, Hacash: hac})
		}
	}
	if len(acts) == 0 {
		sendError(w, "transfer need hacash, satoshi or diamonds")
		return
	}
	for _, act := range acts {
		if err := tx.PushAction(act); err != nil {
			sendError(w, err.Error())
			return
		}
	}
	if _, err := tx.FillSign(mainAcc); err != nil {
		sendError(w, fmt.Sprintf("fill main sign error: %v", err))
		return
	}
	if isFrom {
		if _, err := tx.FillSign(fromAcc); err != nil {
			sendError(w, fmt.Sprintf("fill from sign error: %v", err))
			return
		}
	}
	sendData(w, jsonData{
		"hash":          tx.Hash().Hex(),
		"hash_with_fee": tx.HashWithFee().Hex(),
		"timestamp":     tx.Timestamp(),
		"body":          hex.EncodeToString(tx.Serialize()),
	})
}

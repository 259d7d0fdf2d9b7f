package hacashapi

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hacash/node/core/types"
)

// jsonData is one response object, "ret" is added when sent.
type jsonData map[string]any

func sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, msg string) {
	sendJSON(w, jsonData{"ret": 1, "err": msg})
}

func sendData(w http.ResponseWriter, data jsonData) {
	out := make(jsonData, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["ret"] = 0
	sendJSON(w, out)
}

func sendOK(w http.ResponseWriter) {
	sendJSON(w, jsonData{"ret": 0})
}

func sendList(w http.ResponseWriter, list []jsonData) {
	sendData(w, jsonData{"list": list})
}

func qString(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

func qBool(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return v
}

func qUint(r *http.Request, key string, def uint64) uint64 {
	v, err := strconv.ParseUint(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return def
	}
	return v
}

// amountString renders a in the unit asked by the "unit" parameter: "mei"
// gives decimal mei, anything else the N:U form.
func amountString(r *http.Request, a types.Amount) string {
	if strings.EqualFold(qString(r, "unit", "fin"), "mei") {
		return a.MeiString()
	}
	return a.String()
}

// binaryString renders b as plain hex, or in the format asked by the
// "binary" parameter (hex, base64, base58check) with its json prefix.
func binaryString(r *http.Request, b []byte) string {
	name := qString(r, "binary", "")
	if name == "" {
		return hex.EncodeToString(b)
	}
	bf, err := types.ParseBinaryFormat(name)
	if err != nil {
		return hex.EncodeToString(b)
	}
	return types.EncodeBinary(b, bf)
}

// readBody returns the raw request body, hex decoded when hexbody=true.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if qBool(r, "hexbody") {
		return hex.DecodeString(strings.TrimSpace(string(data)))
	}
	return data, nil
}

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/query/latest":
			w.Write([]byte(`{"ret":0,"height":1000000,"hash":"ab"}`))
		default:
			w.Write([]byte(`{"ret":1,"err":"api not find"}`))
		}
	}))
	defer srv.Close()

	out, err := fetchJSON(srv.Client(), srv.URL, "/query/latest")
	require.NoError(t, err)
	assert.Equal(t, "1000000", out["height"].(interface{ String() string }).String())

	_, err = fetchJSON(srv.Client(), srv.URL, "/query/nothing")
	assert.ErrorContains(t, err, "api not find")
}

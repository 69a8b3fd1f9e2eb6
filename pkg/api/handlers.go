package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/lo"

	"github.com/luxfi/safehash/pkg/safe"
	"github.com/luxfi/safehash/pkg/types"
)

const maxRequestBody = 1 << 20

type networkResponse struct {
	Network   types.NetworkCode `json:"network"`
	ChainID   uint64            `json:"chainId"`
	ShortName string            `json:"shortName"`
	ABILookup bool              `json:"abiLookup"`
}

func (s *Server) handleListNetworks(w http.ResponseWriter, r *http.Request) {
	out := lo.Map(types.SupportedNetworks(), func(n types.Network, _ int) networkResponse {
		return networkResponse{
			Network:   n.Code,
			ChainID:   n.ChainID,
			ShortName: n.ShortName,
			ABILookup: n.ExplorerAPIHost != "",
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default":  safe.DefaultVersion,
		"versions": safe.SupportedVersions,
	})
}

func (s *Server) handleCalculateHashes(w http.ResponseWriter, r *http.Request) {
	var opts safe.Options
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		msg := "invalid request body: " + err.Error()
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeError(w, http.StatusBadRequest, safe.CodeValidation, msg)
		return
	}

	report, err := s.verifier.Verify(r.Context(), opts)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

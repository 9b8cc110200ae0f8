package handlers

import (
	"strconv"

	"github.com/edirooss/qkv-server/internal/quicklist"
)

// valueDTO is the wire form of a quicklist.Value: a single string field,
// since the packed-block codec already treats decimal-text integers and
// byte strings uniformly (see pkg/pack's entry tagging) — callers never
// need to know which encoding a given entry used.
type valueDTO struct {
	Value string `json:"value"`
}

func toDTO(v quicklist.Value) valueDTO {
	if v.HasInt {
		return valueDTO{Value: strconv.FormatInt(v.Int, 10)}
	}
	return valueDTO{Value: string(v.Bytes)}
}

func toDTOs(vs []quicklist.Value) []valueDTO {
	out := make([]valueDTO, len(vs))
	for i, v := range vs {
		out[i] = toDTO(v)
	}
	return out
}

type pushReq struct {
	Values []string `json:"values"`
}

type insertReq struct {
	Pivot string `json:"pivot"`
	Value string `json:"value"`
}

type setReq struct {
	Value string `json:"value"`
}

type remReq struct {
	Count int    `json:"count"`
	Value string `json:"value"`
}

type dupReq struct {
	Dst string `json:"dst"`
}

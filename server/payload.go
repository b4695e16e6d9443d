package server

import (
	"encoding/json"
	"fmt"
	"go/types"
	"log"
	"net/http"
)

// FloatT is a struct with one field, F64, used for json i/o
type FloatT struct {
	F64 float64 `json:"f64"`
}

// IntT is a struct with one field, Int, used for json i/o
type IntT struct {
	Int int `json:"int"`
}

// StrT is a struct with one field, Str, used for json i/o
type StrT struct {
	Str string `json:"str"`
}

// BoolT is a struct with one field, Bool, used for json i/o
type BoolT struct {
	Bool bool `json:"bool"`
}

// HumanPayload holds a single value of basic type and knows how to write
// itself to an HTTP response as a one-key JSON object.
type HumanPayload struct {
	// Bool holds a binary value
	Bool bool

	// Float holds an f64
	Float float64

	// Int holds an integer
	Int int

	// String holds a string
	String string

	// T is the type of the value held
	T types.BasicKind
}

// EncodeAndRespond writes the payload to w as JSON with the single-key
// wrapper appropriate for its type.
func (hp HumanPayload) EncodeAndRespond(w http.ResponseWriter, r *http.Request) {
	var obj interface{}
	switch hp.T {
	case types.Bool:
		obj = BoolT{Bool: hp.Bool}
	case types.Float64:
		obj = FloatT{F64: hp.Float}
	case types.Int:
		obj = IntT{Int: hp.Int}
	case types.String:
		obj = StrT{Str: hp.String}
	default:
		fstr := fmt.Sprintf("payload type %v cannot be encoded", hp.T)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(obj)
	if err != nil {
		log.Println(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package snapshot

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/ferencberes/lnroutesim/simerrors"
)

// LoadRawEdgesCSV reads the raw directed-edge table from r. Missing or
// unparseable columns surface as a simerrors.KindInputSchema error; this is
// the only place in the pipeline that validates shape, as an edge snapshot
// is otherwise treated as a trusted, already-typed []RawEdge everywhere
// else (see spec.md §1: ingestion is an external collaborator, its contract
// ends at this boundary).
//
// There is no third-party CSV/dataframe library anywhere in the example
// pack this module was grounded on; encoding/csv is used here deliberately,
// see DESIGN.md.
func LoadRawEdgesCSV(r io.Reader) ([]RawEdge, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, simerrors.InputSchema("*", "empty edges file")
		}
		return nil, simerrors.InputSchema("*", err.Error())
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	// Only src/trg/capacity/last_update are load-bearing; the remaining
	// policy columns may be absent entirely and fall back to
	// DefaultPolicy (spec.md §4.1's "missing policy fields imputed
	// upstream" clause).
	for _, required := range []string{"src", "trg", "capacity", "last_update"} {
		if _, ok := col[required]; !ok {
			return nil, simerrors.InputSchema(required, "missing column")
		}
	}

	var edges []RawEdge
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, simerrors.InputSchema("*", err.Error())
		}

		edge, err := parseRawEdge(col, row)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	return edges, nil
}

func parseRawEdge(col map[string]int, row []string) (RawEdge, error) {
	get := func(name string) (string, bool) {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}

	e := DefaultPolicy

	src, ok := get("src")
	if !ok || src == "" {
		return RawEdge{}, simerrors.InputSchema("src", "empty value")
	}
	e.Src = src

	trg, ok := get("trg")
	if !ok || trg == "" {
		return RawEdge{}, simerrors.InputSchema("trg", "empty value")
	}
	e.Trg = trg

	cap, ok := get("capacity")
	if !ok {
		return RawEdge{}, simerrors.InputSchema("capacity", "missing value")
	}
	capVal, err := strconv.ParseInt(cap, 10, 64)
	if err != nil {
		return RawEdge{}, simerrors.InputSchema("capacity", err.Error())
	}
	e.Capacity = capVal

	lu, ok := get("last_update")
	if !ok {
		return RawEdge{}, simerrors.InputSchema("last_update", "missing value")
	}
	luVal, err := strconv.ParseInt(lu, 10, 64)
	if err != nil {
		return RawEdge{}, simerrors.InputSchema("last_update", err.Error())
	}
	e.LastUpdate = luVal

	if v, ok := get("disabled"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return RawEdge{}, simerrors.InputSchema("disabled", err.Error())
		}
		e.Disabled = b
	}

	if v, ok := get("fee_base_msat"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return RawEdge{}, simerrors.InputSchema("fee_base_msat", err.Error())
		}
		e.FeeBaseMsat = f
	}

	if v, ok := get("fee_rate_milli_msat"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return RawEdge{}, simerrors.InputSchema(
				"fee_rate_milli_msat", err.Error(),
			)
		}
		e.FeeRateMilliMsat = f
	}

	if v, ok := get("min_htlc"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return RawEdge{}, simerrors.InputSchema("min_htlc", err.Error())
		}
		e.MinHtlc = f
	}

	return e, nil
}

// LoadMerchantsCSV reads the single-column merchants table (pub_key) from r.
func LoadMerchantsCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, simerrors.InputSchema("*", err.Error())
	}

	idx := 0
	for i, name := range header {
		if strings.TrimSpace(name) == "pub_key" {
			idx = i
			break
		}
	}

	var merchants []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, simerrors.InputSchema("pub_key", err.Error())
		}
		if idx < len(row) {
			merchants = append(merchants, strings.TrimSpace(row[idx]))
		}
	}

	return merchants, nil
}

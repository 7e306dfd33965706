// Package rule converts between policy rules and their fixed-shape storage
// records. A rule is a rule-set name (ptype) plus an ordered list of up to
// six string parameters; a record is the persisted form with one nullable
// column per parameter slot.
package rule

import (
	"database/sql"
	"fmt"
)

// MaxParams is the number of parameter slots a storage record carries.
const MaxParams = 6

// Rule is one policy statement as the engine sees it: a rule-set name and
// its ordered parameters. Rules are value objects; two rules with the same
// ptype and params are the same rule for delete matching.
type Rule struct {
	PType  string
	Params []string
}

// Record is the persisted form of a rule. ID is assigned by the database on
// insert and never participates in matching. A slot is absent when its
// NullString is invalid; absent is distinct from the empty string.
type Record struct {
	ID    int64
	PType string
	V     [MaxParams]sql.NullString
}

// ArityError reports a rule whose parameter list does not fit the record
// shape.
type ArityError struct {
	PType string
	Count int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("rule %q has %d parameters, storage records hold at most %d", e.PType, e.Count, MaxParams)
}

// Encode maps a rule onto a storage record. Params beyond len(params) are
// left absent (NULL), never set to the empty string. The record ID stays
// zero; the database assigns it on insert.
func Encode(ptype string, params []string) (Record, error) {
	if len(params) > MaxParams {
		return Record{}, &ArityError{PType: ptype, Count: len(params)}
	}
	rec := Record{PType: ptype}
	for i, p := range params {
		rec.V[i] = sql.NullString{String: p, Valid: true}
	}
	return rec, nil
}

// Decode reconstructs a rule from a storage record.
//
// Params are the present slots joined in slot order, skipping holes: a
// record with v0 and v2 set but v1 NULL decodes to a two-element parameter
// list. Records written through Encode never contain holes, so for normal
// data this is identical to taking the prefix before the first NULL; the
// skip-holes reading only matters for rows edited directly in the database.
func Decode(rec Record) Rule {
	params := make([]string, 0, MaxParams)
	for _, v := range rec.V {
		if v.Valid {
			params = append(params, v.String)
		}
	}
	return Rule{PType: rec.PType, Params: params}
}

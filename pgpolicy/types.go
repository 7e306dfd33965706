package pgpolicy

import (
	"github.com/pgpolicy/pgpolicy/internal/adapter"
	"github.com/pgpolicy/pgpolicy/internal/model"
	"github.com/pgpolicy/pgpolicy/internal/rule"
)

// Re-export important types for external consumption

// Adapter persists policy rules in a PostgreSQL table.
type Adapter = adapter.Adapter

// Config holds connection parameters for an adapter-owned connection.
type Config = adapter.Config

// Filter selects a subset of stored rules by rule-set name and a positional
// value pattern.
type Filter = adapter.Filter

// Interface is the operation surface a policy engine consumes.
type Interface = adapter.Interface

// Model is the in-memory policy model the adapter loads into and saves from.
type Model = model.Model

// Rule is one policy statement: a rule-set name and its ordered parameters.
type Rule = rule.Rule

// ArityError reports a rule with more parameters than a storage record holds.
type ArityError = rule.ArityError

// DefaultTableName is the rule table used when none is configured.
const DefaultTableName = adapter.DefaultTableName

// MaxParams is the number of parameter slots a storage record carries.
const MaxParams = rule.MaxParams

// Error taxonomy; classify with errors.Is.
var (
	ErrNotOpen          = adapter.ErrNotOpen
	ErrStoreUnavailable = adapter.ErrStoreUnavailable
	ErrSaveFailed       = adapter.ErrSaveFailed
	ErrNotImplemented   = adapter.ErrNotImplemented
)

// NewModel returns an empty policy model.
func NewModel() *Model {
	return model.New()
}

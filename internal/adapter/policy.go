package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgpolicy/pgpolicy/internal/model"
	"github.com/pgpolicy/pgpolicy/internal/rule"
)

// insertChunkSize bounds the rows per bulk INSERT statement. Each row sends
// seven parameters; PostgreSQL caps a statement at 65535 bind parameters.
const insertChunkSize = 500

// Filter selects a subset of stored rules: a rule-set name plus a positional
// value pattern starting at v0. An empty string leaves that position
// unconstrained; it never matches an absent slot.
type Filter struct {
	PType  string
	Values []string
}

// LoadPolicy reads every stored record, decodes it, and inserts it into the
// model under its rule-set name. No ordering is guaranteed. Loading is
// read-only and not atomic: if it fails partway the model may hold a
// partial rule set, so callers should load into a fresh model.
func (a *Adapter) LoadPolicy(ctx context.Context, m *model.Model) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	if err := a.loadWhere(ctx, m, "", nil); err != nil {
		return err
	}
	a.setFiltered(false)
	return nil
}

// LoadFilteredPolicy loads only the records matching the given filters. The
// adapter is marked filtered afterwards and SavePolicy will refuse to run
// until a full LoadPolicy, so a partial view can never replace the full
// stored set. Calling it with no filters is equivalent to LoadPolicy.
func (a *Adapter) LoadFilteredPolicy(ctx context.Context, m *model.Model, filters ...Filter) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	if len(filters) == 0 {
		return a.LoadPolicy(ctx, m)
	}
	for _, f := range filters {
		where, args, err := filterWhere(f.PType, 0, f.Values)
		if err != nil {
			return err
		}
		if err := a.loadWhere(ctx, m, where, args); err != nil {
			return err
		}
	}
	a.setFiltered(true)
	return nil
}

// SavePolicy atomically replaces the entire stored rule set with the
// model's current contents: one transaction wrapping a delete-all and a
// chunked bulk insert. On any failure, including context cancellation, the
// transaction rolls back and the store keeps its prior state. Use AddPolicy
// for incremental persistence; SavePolicy is never an append.
func (a *Adapter) SavePolicy(ctx context.Context, m *model.Model) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	if a.IsFiltered() {
		return fmt.Errorf("%w: model was loaded filtered, refusing to overwrite the full rule set", ErrSaveFailed)
	}

	// Encode everything up front so arity failures reject before any I/O.
	records := make([]rule.Record, 0, m.RuleCount())
	err := m.Walk(func(sec, ptype string, params []string) error {
		rec, err := rule.Encode(ptype, params)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return err
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", ErrSaveFailed, err)
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback()

	deleteAll := fmt.Sprintf("DELETE FROM %s", a.quotedTable())
	if _, err := execOn(ctx, tx, deleteAll, nil, "clear stored rules"); err != nil {
		return fmt.Errorf("%w: clear stored rules: %w", ErrSaveFailed, err)
	}

	for start := 0; start < len(records); start += insertChunkSize {
		end := min(start+insertChunkSize, len(records))
		chunk := records[start:end]
		query, args := bulkInsert(a.quotedTable(), chunk)
		if _, err := execOn(ctx, tx, query, args, "insert rule batch"); err != nil {
			return fmt.Errorf("%w: insert rules: %w", ErrSaveFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrSaveFailed, err)
	}
	return nil
}

// AddPolicy encodes and inserts one rule. It does not deduplicate: the
// engine treats duplicate rules as a no-op on evaluation, and RemovePolicy
// deletes every matching row, so duplicates cost storage but not
// correctness.
func (a *Adapter) AddPolicy(ctx context.Context, sec, ptype string, params []string) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	rec, err := rule.Encode(ptype, params)
	if err != nil {
		return err
	}
	query, args := bulkInsert(a.quotedTable(), []rule.Record{rec})
	if _, err := a.execContext(ctx, query, args, "insert rule"); err != nil {
		return fmt.Errorf("%w: insert rule: %w", ErrSaveFailed, err)
	}
	return nil
}

// AddPolicies inserts a batch of rules for one rule set inside a single
// transaction: either all rules are stored or none are.
func (a *Adapter) AddPolicies(ctx context.Context, sec, ptype string, rules [][]string) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	records := make([]rule.Record, 0, len(rules))
	for _, params := range rules {
		rec, err := rule.Encode(ptype, params)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", ErrSaveFailed, err)
	}
	defer tx.Rollback()

	for start := 0; start < len(records); start += insertChunkSize {
		end := min(start+insertChunkSize, len(records))
		query, args := bulkInsert(a.quotedTable(), records[start:end])
		if _, err := execOn(ctx, tx, query, args, "insert rule batch"); err != nil {
			return fmt.Errorf("%w: insert rules: %w", ErrSaveFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrSaveFailed, err)
	}
	return nil
}

// RemovePolicy deletes every record whose ptype and slots exactly equal the
// encoding of params, absent slots included: a three-param rule only
// matches rows whose v3..v5 are NULL. Matching never uses the row id.
// Removing a rule that is not stored succeeds and deletes nothing.
func (a *Adapter) RemovePolicy(ctx context.Context, sec, ptype string, params []string) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	rec, err := rule.Encode(ptype, params)
	if err != nil {
		return err
	}
	where, args := exactWhere(rec)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", a.quotedTable(), where)
	if _, err := a.execContext(ctx, query, args, "delete rule"); err != nil {
		return fmt.Errorf("%w: delete rule: %w", ErrSaveFailed, err)
	}
	return nil
}

// RemovePolicies deletes a batch of rules from one rule set inside a single
// transaction.
func (a *Adapter) RemovePolicies(ctx context.Context, sec, ptype string, rules [][]string) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	records := make([]rule.Record, 0, len(rules))
	for _, params := range rules {
		rec, err := rule.Encode(ptype, params)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", ErrSaveFailed, err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		where, args := exactWhere(rec)
		query := fmt.Sprintf("DELETE FROM %s WHERE %s", a.quotedTable(), where)
		if _, err := execOn(ctx, tx, query, args, "delete rule"); err != nil {
			return fmt.Errorf("%w: delete rule: %w", ErrSaveFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrSaveFailed, err)
	}
	return nil
}

// RemoveFilteredPolicy deletes every record matching ptype plus a partial
// positional pattern: slots before fieldIndex are unconstrained, slots at
// fieldIndex onwards must equal the given values (an empty string leaves
// that position unconstrained too), and higher slots are unconstrained.
// With no field values it deletes the whole rule set.
func (a *Adapter) RemoveFilteredPolicy(ctx context.Context, sec, ptype string, fieldIndex int, fieldValues ...string) error {
	if err := a.requireOpen(); err != nil {
		return err
	}
	where, args, err := filterWhere(ptype, fieldIndex, fieldValues)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", a.quotedTable(), where)
	if _, err := a.execContext(ctx, query, args, "delete rules by pattern"); err != nil {
		return fmt.Errorf("%w: delete rules by pattern: %w", ErrSaveFailed, err)
	}
	return nil
}

// loadWhere runs a select with an optional WHERE clause and feeds each
// decoded record into the model.
func (a *Adapter) loadWhere(ctx context.Context, m *model.Model, where string, args []any) error {
	query := fmt.Sprintf("SELECT id, ptype, v0, v1, v2, v3, v4, v5 FROM %s", a.quotedTable())
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := a.queryContext(ctx, query, args, "load stored rules")
	if err != nil {
		return fmt.Errorf("%w: load stored rules: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec rule.Record
		if err := rows.Scan(&rec.ID, &rec.PType, &rec.V[0], &rec.V[1], &rec.V[2], &rec.V[3], &rec.V[4], &rec.V[5]); err != nil {
			return fmt.Errorf("%w: scan rule record: %w", ErrStoreUnavailable, err)
		}
		r := rule.Decode(rec)
		m.AddRule("", r.PType, r.Params)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: read rule records: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// bulkInsert builds a multi-row INSERT for a chunk of records.
func bulkInsert(quotedTable string, records []rule.Record) (string, []any) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (ptype, v0, v1, v2, v3, v4, v5) VALUES ", quotedTable)

	args := make([]any, 0, len(records)*(rule.MaxParams+1))
	for i, rec := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j <= rule.MaxParams; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", len(args)+j+1)
		}
		sb.WriteString(")")
		args = append(args, rec.PType)
		for _, v := range rec.V {
			args = append(args, v)
		}
	}
	return sb.String(), args
}

// exactWhere builds the predicate matching a record field-for-field.
// Present slots compare by value, absent slots require NULL, so an exact
// match can never pick up a longer rule that shares a prefix.
func exactWhere(rec rule.Record) (string, []any) {
	conds := []string{"ptype = $1"}
	args := []any{rec.PType}
	for i, v := range rec.V {
		if v.Valid {
			args = append(args, v.String)
			conds = append(conds, fmt.Sprintf("v%d = $%d", i, len(args)))
		} else {
			conds = append(conds, fmt.Sprintf("v%d IS NULL", i))
		}
	}
	return strings.Join(conds, " AND "), args
}

// filterWhere builds the predicate for a partial positional pattern
// starting at fieldIndex. Empty-string values constrain nothing; in
// particular they never match NULL slots.
func filterWhere(ptype string, fieldIndex int, fieldValues []string) (string, []any, error) {
	if fieldIndex < 0 || fieldIndex+len(fieldValues) > rule.MaxParams {
		return "", nil, &rule.ArityError{PType: ptype, Count: fieldIndex + len(fieldValues)}
	}
	conds := []string{"ptype = $1"}
	args := []any{ptype}
	for i, v := range fieldValues {
		if v == "" {
			continue
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("v%d = $%d", fieldIndex+i, len(args)))
	}
	return strings.Join(conds, " AND "), args, nil
}

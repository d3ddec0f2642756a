package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// Features, traits, and inventory keep insertion order (rowid).

const featureColumns = `id, character_id, name, description, source, level, uses_max, uses_current, rest_type, is_custom`

// InsertFeature stores a feature.
func InsertFeature(ctx context.Context, q Querier, f *sheet.Feature) error {
	var usesMax, usesCurrent sql.NullInt64
	var restType sql.NullString
	if f.Uses != nil {
		usesMax = sql.NullInt64{Int64: int64(f.Uses.Max), Valid: true}
		usesCurrent = sql.NullInt64{Int64: int64(f.Uses.Current), Valid: true}
		restType = sql.NullString{String: string(f.Uses.Rest), Valid: true}
	}
	_, err := q.ExecContext(ctx, `INSERT INTO features (`+featureColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.CharacterID, f.Name, f.Description, f.Source, f.Level,
		usesMax, usesCurrent, restType, f.IsCustom,
	)
	return insertError(err, f.CharacterID)
}

// GetFeature retrieves a feature by ID.
func GetFeature(ctx context.Context, q Querier, id string) (*sheet.Feature, error) {
	row := q.QueryRowContext(ctx, `SELECT `+featureColumns+` FROM features WHERE id = ?`, id)
	f, err := scanFeature(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("feature", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return f, nil
}

// ListFeatures returns a character's features.
func ListFeatures(ctx context.Context, q Querier, characterID string) ([]sheet.Feature, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+featureColumns+` FROM features WHERE character_id = ? ORDER BY rowid`, characterID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	features := []sheet.Feature{}
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		features = append(features, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return features, nil
}

// UpdateFeatureUses sets the remaining uses of a limited-use feature.
func UpdateFeatureUses(ctx context.Context, q Querier, id string, current int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE features SET uses_current = ? WHERE id = ? AND uses_max IS NOT NULL`, current, id)
	return requireAffected(result, err, "feature", id)
}

// RestoreFeatureUses refills every limited-use feature of a character whose
// rest type is in restTypes. Returns the number of features refilled.
func RestoreFeatureUses(ctx context.Context, q Querier, characterID string, restTypes []sheet.RestType) (int, error) {
	restored := 0
	for _, rt := range restTypes {
		result, err := q.ExecContext(ctx, `
			UPDATE features SET uses_current = uses_max
			WHERE character_id = ? AND uses_max IS NOT NULL AND rest_type = ?`,
			characterID, string(rt))
		if err != nil {
			return 0, errors.NewInternal(err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, errors.NewInternal(err)
		}
		restored += int(n)
	}
	return restored, nil
}

// DeleteFeature removes a feature. Returns false when no row matched.
func DeleteFeature(ctx context.Context, q Querier, id string) (bool, error) {
	return deleteByID(ctx, q, "features", id)
}

func scanFeature(row rowScanner) (*sheet.Feature, error) {
	var (
		f           sheet.Feature
		usesMax     sql.NullInt64
		usesCurrent sql.NullInt64
		restType    sql.NullString
	)
	if err := row.Scan(
		&f.ID, &f.CharacterID, &f.Name, &f.Description, &f.Source, &f.Level,
		&usesMax, &usesCurrent, &restType, &f.IsCustom,
	); err != nil {
		return nil, err
	}
	if usesMax.Valid {
		f.Uses = &sheet.Uses{
			Max:     int(usesMax.Int64),
			Current: int(usesCurrent.Int64),
			Rest:    sheet.RestType(restType.String),
		}
	}
	return &f, nil
}

// InsertTrait stores a trait.
func InsertTrait(ctx context.Context, q Querier, t *sheet.Trait) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO traits (id, character_id, name, description, source, is_custom)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.CharacterID, t.Name, t.Description, t.Source, t.IsCustom,
	)
	return insertError(err, t.CharacterID)
}

// GetTrait retrieves a trait by ID.
func GetTrait(ctx context.Context, q Querier, id string) (*sheet.Trait, error) {
	var t sheet.Trait
	err := q.QueryRowContext(ctx, `
		SELECT id, character_id, name, description, source, is_custom
		FROM traits WHERE id = ?`, id).
		Scan(&t.ID, &t.CharacterID, &t.Name, &t.Description, &t.Source, &t.IsCustom)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("trait", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &t, nil
}

// ListTraits returns a character's traits.
func ListTraits(ctx context.Context, q Querier, characterID string) ([]sheet.Trait, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, character_id, name, description, source, is_custom
		FROM traits WHERE character_id = ? ORDER BY rowid`, characterID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	traits := []sheet.Trait{}
	for rows.Next() {
		var t sheet.Trait
		if err := rows.Scan(&t.ID, &t.CharacterID, &t.Name, &t.Description, &t.Source, &t.IsCustom); err != nil {
			return nil, errors.NewInternal(err)
		}
		traits = append(traits, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return traits, nil
}

// DeleteTrait removes a trait. Returns false when no row matched.
func DeleteTrait(ctx context.Context, q Querier, id string) (bool, error) {
	return deleteByID(ctx, q, "traits", id)
}

const itemColumns = `id, character_id, name, quantity, weight, value_amount, value_currency,
	description, equipped, category, properties, is_custom`

// InsertItem stores an inventory item. Properties are kept as a JSON array.
func InsertItem(ctx context.Context, q Querier, it *sheet.InventoryItem) error {
	var props sql.NullString
	if len(it.Properties) > 0 {
		data, err := json.Marshal(it.Properties)
		if err != nil {
			return errors.NewInternal(err)
		}
		props = sql.NullString{String: string(data), Valid: true}
	}
	_, err := q.ExecContext(ctx, `INSERT INTO inventory (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.CharacterID, it.Name, it.Quantity, it.Weight,
		it.Value.Amount, string(it.Value.Currency), toNullString(it.Description),
		it.Equipped, string(it.Category), props, it.IsCustom,
	)
	return insertError(err, it.CharacterID)
}

// GetItem retrieves an inventory item by ID.
func GetItem(ctx context.Context, q Querier, id string) (*sheet.InventoryItem, error) {
	row := q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory WHERE id = ?`, id)
	it, err := scanItem(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("item", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return it, nil
}

// ListItems returns a character's inventory.
func ListItems(ctx context.Context, q Querier, characterID string) ([]sheet.InventoryItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM inventory WHERE character_id = ? ORDER BY rowid`, characterID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items := []sheet.InventoryItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// SetItemEquipped persists an item's equipped flag.
func SetItemEquipped(ctx context.Context, q Querier, id string, equipped bool) error {
	result, err := q.ExecContext(ctx, `UPDATE inventory SET equipped = ? WHERE id = ?`, equipped, id)
	return requireAffected(result, err, "item", id)
}

// DeleteItem removes an inventory item. Returns false when no row matched.
func DeleteItem(ctx context.Context, q Querier, id string) (bool, error) {
	return deleteByID(ctx, q, "inventory", id)
}

func scanItem(row rowScanner) (*sheet.InventoryItem, error) {
	var (
		it          sheet.InventoryItem
		currency    string
		category    string
		description sql.NullString
		props       sql.NullString
	)
	if err := row.Scan(
		&it.ID, &it.CharacterID, &it.Name, &it.Quantity, &it.Weight,
		&it.Value.Amount, &currency, &description,
		&it.Equipped, &category, &props, &it.IsCustom,
	); err != nil {
		return nil, err
	}
	it.Value.Currency = sheet.Currency(currency)
	it.Category = sheet.Category(category)
	it.Description = fromNullString(description)
	if props.Valid && props.String != "" {
		if err := json.Unmarshal([]byte(props.String), &it.Properties); err != nil {
			return nil, err
		}
	}
	return &it, nil
}

// insertError maps an insert failure on a child table.
func insertError(err error, characterID string) error {
	if err == nil {
		return nil
	}
	if isForeignKeyError(err) {
		return errors.NewNotFound("character", characterID)
	}
	return errors.NewInternal(err)
}

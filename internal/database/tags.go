package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NormalizeTagName returns the canonical form of a tag name: trimmed and
// lowercased. All tag lookups and inserts go through this form.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetOrCreateTag gets an existing tag by normalized name or creates a new
// one with the given type. The type of an existing tag is left untouched.
func (d *Database) GetOrCreateTag(ctx context.Context, name string, tagType TagType) (*Tag, error) {
	done := observeQuery("get_or_create_tag")

	name = NormalizeTagName(name)
	if name == "" {
		err := errors.New("tag name cannot be empty")
		done(err)
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var tag Tag
	var tagTypeStr string
	var createdAt int64

	err := d.db.QueryRowContext(ctx,
		"SELECT id, name, type, created_at FROM tags WHERE name = ?",
		name,
	).Scan(&tag.ID, &tag.Name, &tagTypeStr, &createdAt)

	if err == nil {
		tag.Type = TagType(tagTypeStr)
		tag.CreatedAt = time.Unix(createdAt, 0)
		done(nil)
		return &tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		err = fmt.Errorf("failed to look up tag: %w", err)
		done(err)
		return nil, err
	}

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO tags (name, type) VALUES (?, ?)",
		name, string(tagType),
	)
	if err != nil {
		err = fmt.Errorf("failed to create tag: %w", err)
		done(err)
		return nil, err
	}

	tag.ID, _ = result.LastInsertId()
	tag.Name = name
	tag.Type = tagType
	tag.CreatedAt = time.Now()

	done(nil)
	return &tag, nil
}

// LinkExists reports whether an asset-tag link already exists.
func (d *Database) LinkExists(ctx context.Context, assetID, tagID int64) (bool, error) {
	done := observeQuery("link_exists")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var exists int
	err := d.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM asset_tags WHERE asset_id = ? AND tag_id = ?)
	`, assetID, tagID).Scan(&exists)
	done(err)
	if err != nil {
		return false, fmt.Errorf("failed to check link: %w", err)
	}
	return exists != 0, nil
}

// CreateLink attaches a tag to an asset. Callers are expected to check
// LinkExists first; a second insert of the same pair fails on the unique
// constraint.
func (d *Database) CreateLink(ctx context.Context, assetID, tagID int64) error {
	done := observeQuery("create_link")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx,
		"INSERT INTO asset_tags (asset_id, tag_id) VALUES (?, ?)",
		assetID, tagID,
	)
	done(err)
	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// TagsForAsset returns the normalized names of all tags linked to an asset,
// in link-creation order.
func (d *Database) TagsForAsset(ctx context.Context, assetID int64) ([]string, error) {
	done := observeQuery("tags_for_asset")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name
		FROM asset_tags at
		INNER JOIN tags t ON at.tag_id = t.id
		WHERE at.asset_id = ?
		ORDER BY at.id
	`, assetID)
	if err != nil {
		done(err)
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			done(err)
			return nil, err
		}
		names = append(names, name)
	}
	done(rows.Err())
	return names, rows.Err()
}

// CountTags returns the total number of distinct tags.
func (d *Database) CountTags(ctx context.Context) (int, error) {
	done := observeQuery("count_tags")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&count)
	done(err)
	if err != nil {
		return 0, err
	}
	return count, nil
}

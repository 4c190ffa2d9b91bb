// Bookrec - Cluster-Constrained Booking Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package database

import (
	"context"
	"fmt"
)

// Reserved column names of the feature CSVs.
const (
	ColumnUser       = "code"
	ColumnBooking    = "bookcode"
	ColumnItem       = "propcode"
	ColumnYear       = "year"
	ColumnBookingCnt = "booking_cnt"
	ColumnActive     = "active"
)

// UserFeatures returns every user's features divided by the user's
// booking count. Users with a zero booking count get zero features.
func (db *DB) UserFeatures(ctx context.Context) (*Frame, error) {
	features, err := db.featureColumns(ctx, TableUsers, []string{ColumnUser, ColumnBookingCnt})
	if err != nil {
		return nil, err
	}

	cnt := fmt.Sprintf("NULLIF(CAST(%s AS DOUBLE), 0)", quoteIdent(ColumnBookingCnt))
	exprs := make([]string, len(features))
	for i, f := range features {
		exprs[i] = fmt.Sprintf("CAST(%s AS DOUBLE) / %s", quoteIdent(f), cnt)
	}
	q := fmt.Sprintf("SELECT CAST(%s AS VARCHAR)%s FROM %s WHERE %s IS NOT NULL ORDER BY 1",
		quoteIdent(ColumnUser), joinExprs(exprs), quoteIdent(TableUsers), quoteIdent(ColumnUser))

	return db.readFrame(ctx, "USER_FEATURES", TableUsers, q, features)
}

// BookingSummaries returns, per user, the mean of every booking feature
// over the user's bookings.
func (db *DB) BookingSummaries(ctx context.Context) (*Frame, error) {
	return db.GroupMean(ctx, TableBookings, ColumnUser, ColumnBooking, ColumnItem, ColumnYear)
}

// ItemObservations returns the number of distinct bookings per item.
func (db *DB) ItemObservations(ctx context.Context) (map[string]int, error) {
	return db.DistinctCount(ctx, TableBookings, ColumnItem, ColumnBooking)
}

// UserItems returns the set of items each user has booked.
func (db *DB) UserItems(ctx context.Context) (map[string][]string, error) {
	pairs, err := db.Pairs(ctx, TableBookings, ColumnUser, ColumnItem, true)
	if err != nil {
		return nil, err
	}
	items := make(map[string][]string)
	for _, p := range pairs {
		items[p.A] = append(items[p.A], p.B)
	}
	return items, nil
}

// BookingPairs returns the (user, booking) pair of every booking row.
func (db *DB) BookingPairs(ctx context.Context) ([]Pair, error) {
	return db.Pairs(ctx, TableBookings, ColumnUser, ColumnBooking, false)
}

// ItemPairs returns the (user, item) pair of every booking row. Repeat
// bookings appear once per row.
func (db *DB) ItemPairs(ctx context.Context) ([]Pair, error) {
	return db.Pairs(ctx, TableBookings, ColumnUser, ColumnItem, false)
}

// TestBookings returns the distinct (user, item) pairs of the held-out
// bookings.
func (db *DB) TestBookings(ctx context.Context) ([]Pair, error) {
	return db.Pairs(ctx, TableTestBookings, ColumnUser, ColumnItem, true)
}

// ActiveItems returns the sorted ids of properties whose active column
// equals flag.
func (db *DB) ActiveItems(ctx context.Context, flag int) ([]string, error) {
	if _, err := db.featureColumns(ctx, TableProperties, []string{ColumnItem, ColumnActive}); err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT DISTINCT CAST(%s AS VARCHAR) FROM %s WHERE CAST(%s AS BIGINT) = ? AND %s IS NOT NULL ORDER BY 1",
		quoteIdent(ColumnItem), quoteIdent(TableProperties), quoteIdent(ColumnActive), quoteIdent(ColumnItem))

	rows, done, err := db.query(ctx, "ACTIVE_ITEMS", TableProperties, q, flag)
	if err != nil {
		return nil, fmt.Errorf("active items: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			break
		}
		ids = append(ids, id)
	}
	if err == nil {
		err = rows.Err()
	}
	done(err)
	if err != nil {
		return nil, fmt.Errorf("active items: %w", err)
	}
	return ids, nil
}

// ItemFeatures returns, per item, the mean of its property features over
// all years.
func (db *DB) ItemFeatures(ctx context.Context) (*Frame, error) {
	return db.GroupMean(ctx, TablePropertyFeatures, ColumnItem, ColumnYear)
}

// UserItemFeatures returns, per user, the mean property features of the
// items they booked, matched on item and booking year.
func (db *DB) UserItemFeatures(ctx context.Context) (*Frame, error) {
	if _, err := db.featureColumns(ctx, TableBookings, []string{ColumnUser, ColumnItem, ColumnYear}); err != nil {
		return nil, err
	}
	features, err := db.featureColumns(ctx, TablePropertyFeatures, []string{ColumnItem, ColumnYear})
	if err != nil {
		return nil, err
	}

	exprs := make([]string, len(features))
	for i, f := range features {
		exprs[i] = fmt.Sprintf("AVG(CAST(pf.%s AS DOUBLE))", quoteIdent(f))
	}
	item, year := quoteIdent(ColumnItem), quoteIdent(ColumnYear)
	q := fmt.Sprintf(`SELECT CAST(b.%s AS VARCHAR)%s
		FROM %s b
		JOIN %s pf
		  ON CAST(b.%s AS VARCHAR) = CAST(pf.%s AS VARCHAR)
		 AND CAST(b.%s AS VARCHAR) = CAST(pf.%s AS VARCHAR)
		WHERE b.%s IS NOT NULL
		GROUP BY 1
		ORDER BY 1`,
		quoteIdent(ColumnUser), joinExprs(exprs),
		quoteIdent(TableBookings), quoteIdent(TablePropertyFeatures),
		item, item, year, year,
		quoteIdent(ColumnUser))

	return db.readFrame(ctx, "USER_ITEM_FEATURES", TableBookings, q, features)
}

package config

import (
	"database/sql"
	"log"

	"tourops/internal/utils"
)

var schemaDDL = map[string]string{
	"users": `CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(191) NOT NULL,
		username VARCHAR(191) NOT NULL UNIQUE,
		email VARCHAR(191) NOT NULL UNIQUE,
		phone VARCHAR(32) NOT NULL DEFAULT '',
		password_hash VARCHAR(191) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'user',
		status VARCHAR(32) NOT NULL DEFAULT 'active',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	"operator_accounts": `CREATE TABLE IF NOT EXISTS operator_accounts (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		operator_name VARCHAR(191) NOT NULL,
		held_balance BIGINT NOT NULL DEFAULT 0,
		withdrawable_balance BIGINT NOT NULL DEFAULT 0,
		revision BIGINT NOT NULL DEFAULT 1
	)`,
	"departures": `CREATE TABLE IF NOT EXISTS departures (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		operator_id BIGINT NOT NULL,
		tour_name VARCHAR(191) NOT NULL,
		departure_date DATETIME NOT NULL,
		completion_date DATETIME NOT NULL,
		max_seats INT NOT NULL,
		price_per_seat BIGINT NOT NULL,
		booked_seats INT NOT NULL DEFAULT 0,
		status VARCHAR(32) NOT NULL DEFAULT 'scheduled',
		revision BIGINT NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_departures_operator (operator_id),
		KEY idx_departures_status_date (status, departure_date)
	)`,
	"refund_policies": `CREATE TABLE IF NOT EXISTS refund_policies (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		category VARCHAR(32) NOT NULL,
		min_days_before INT NOT NULL,
		max_days_before INT NULL,
		refund_percent BIGINT NOT NULL,
		flat_fee BIGINT NOT NULL DEFAULT 0,
		fee_percent BIGINT NOT NULL DEFAULT 0,
		priority INT NOT NULL DEFAULT 0,
		effective_from DATETIME NOT NULL,
		effective_to DATETIME NULL,
		active TINYINT(1) NOT NULL DEFAULT 1,
		KEY idx_policies_category_active (category, active)
	)`,
	"bookings": `CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		departure_id BIGINT NOT NULL,
		operator_id BIGINT NOT NULL,
		customer_name VARCHAR(191) NOT NULL,
		customer_phone VARCHAR(32) NOT NULL DEFAULT '',
		guest_count INT NOT NULL,
		amount_charged BIGINT NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'confirmed',
		cancel_category VARCHAR(32) NULL,
		cancel_reason TEXT NULL,
		applied_policy_id BIGINT NULL,
		refund_amount BIGINT NOT NULL DEFAULT 0,
		refund_fee BIGINT NOT NULL DEFAULT 0,
		net_payable BIGINT NOT NULL DEFAULT 0,
		revision BIGINT NOT NULL DEFAULT 1,
		booked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		cancelled_at DATETIME NULL,
		KEY idx_bookings_departure (departure_id),
		KEY idx_bookings_status (status)
	)`,
	"refund_requests": `CREATE TABLE IF NOT EXISTS refund_requests (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL UNIQUE,
		reference_no VARCHAR(64) NOT NULL,
		requested_amount BIGINT NOT NULL,
		approved_amount BIGINT NOT NULL DEFAULT 0,
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		applied_policy_id BIGINT NULL,
		reason TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refunds_status (status)
	)`,
	"booking_ops": `CREATE TABLE IF NOT EXISTS booking_ops (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		kind VARCHAR(32) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_booking_ops (booking_id, kind)
	)`,
}

// EnsureSchema creates any missing tables. Existing tables are never altered;
// column migrations stay a manual operation.
func EnsureSchema(db *sql.DB) error {
	for _, table := range []string{
		"users", "operator_accounts", "departures", "refund_policies",
		"bookings", "refund_requests", "booking_ops",
	} {
		if utils.HasTable(db, table) {
			continue
		}
		log.Printf("creating missing table %s", table)
		if _, err := db.Exec(schemaDDL[table]); err != nil {
			return err
		}
	}
	return nil
}

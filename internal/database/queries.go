/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

const (
	// User queries
	queryGetUserByEmail = `
		SELECT id FROM users WHERE email = ? LIMIT 1`

	queryInsertUser = `
		INSERT INTO users (email, status, created) VALUES (?, ?, ?)`

	queryGetUserById = `
		SELECT id, email, status, created
		FROM users
		WHERE id = ?`

	queryUpdateUserStatus = `
		UPDATE users SET status = ? WHERE id = ?`

	// Balance queries
	queryInsertBalance = `
		INSERT INTO balances (user_id, currency, amount, version, created)
		VALUES (?, ?, ?, ?, ?)`

	queryGetBalance = `
		SELECT id, user_id, currency, amount, version, created
		FROM balances
		WHERE user_id = ? AND currency = ?`

	queryGetUserBalances = `
		SELECT id, user_id, currency, amount, version, created
		FROM balances
		WHERE user_id = ?
		ORDER BY currency`

	queryGetBalanceForUpdate = `
		SELECT id, amount, version
		FROM balances
		WHERE user_id = ? AND currency = ?`

	queryUpdateBalance = `
		UPDATE balances
		SET amount = ?, version = version + 1
		WHERE id = ? AND version = ?`

	queryGetProcessedAmounts = `
		SELECT type, amount
		FROM transactions
		WHERE user_id = ? AND currency = ? AND status = 'PROCESSED'`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (user_id, currency, amount, status, type, created)
		VALUES (?, ?, ?, ?, ?, ?)`

	queryGetTransaction = `
		SELECT id, user_id, currency, amount, status, type, created
		FROM transactions
		WHERE id = ?`

	queryListTransactions = `
		SELECT id, user_id, currency, amount, status, type, created
		FROM transactions
		ORDER BY created DESC, id DESC`

	queryListTransactionsByUser = `
		SELECT id, user_id, currency, amount, status, type, created
		FROM transactions
		WHERE user_id = ?
		ORDER BY created DESC, id DESC`

	queryMarkTransactionRolledBack = `
		UPDATE transactions
		SET status = 'ROLLBACKED'
		WHERE id = ? AND status = 'PROCESSED'`

	// Analysis window queries. Windows compare calendar dates, not
	// timestamps, and are inclusive on both ends.
	queryCountUsersRegistered = `
		SELECT COUNT(*)
		FROM users
		WHERE date(created) >= ? AND date(created) <= ?`

	queryCountRegisteredDepositUsers = `
		SELECT COUNT(DISTINCT u.id)
		FROM users u
		JOIN transactions t ON t.user_id = u.id
		WHERE date(u.created) >= ? AND date(u.created) <= ?
		  AND date(t.created) >= ? AND date(t.created) <= ?
		  AND t.type = 'DEPOSIT'`

	queryCountRegisteredProcessedDepositUsers = `
		SELECT COUNT(DISTINCT u.id)
		FROM users u
		JOIN transactions t ON t.user_id = u.id
		WHERE date(u.created) >= ? AND date(u.created) <= ?
		  AND date(t.created) >= ? AND date(t.created) <= ?
		  AND t.type = 'DEPOSIT' AND t.status != 'ROLLBACKED'`

	querySumTransactionAmounts = `
		SELECT currency, amount
		FROM transactions
		WHERE date(created) >= ? AND date(created) <= ?
		  AND type = ? AND status != 'ROLLBACKED'`

	queryCountTransactions = `
		SELECT COUNT(*)
		FROM transactions
		WHERE date(created) >= ? AND date(created) <= ?`

	queryCountProcessedTransactions = `
		SELECT COUNT(*)
		FROM transactions
		WHERE date(created) >= ? AND date(created) <= ?
		  AND status != 'ROLLBACKED'`

	// Snapshot queries
	queryDeleteSnapshots = `
		DELETE FROM analysis_snapshots`

	queryInsertSnapshot = `
		INSERT INTO analysis_snapshots (id, payload, generated_at)
		VALUES (?, ?, ?)`

	queryGetLatestSnapshot = `
		SELECT payload
		FROM analysis_snapshots
		ORDER BY generated_at DESC
		LIMIT 1`
)

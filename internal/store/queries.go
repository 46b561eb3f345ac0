package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// Catalog queries.
const (
	queryUpsertSku = `
		INSERT INTO skus (
			code, brand, model_key, capacity, color, carrier,
			product_type, is_unlocked, source_tab, updated_at
		) VALUES (
			@code, @brand, @model_key, @capacity, @color, @carrier,
			@product_type, @is_unlocked, @source_tab, now()
		)
		ON CONFLICT (code) DO UPDATE SET
			brand        = EXCLUDED.brand,
			model_key    = EXCLUDED.model_key,
			capacity     = EXCLUDED.capacity,
			color        = EXCLUDED.color,
			carrier      = EXCLUDED.carrier,
			product_type = EXCLUDED.product_type,
			is_unlocked  = EXCLUDED.is_unlocked,
			source_tab   = EXCLUDED.source_tab,
			updated_at   = now()
		RETURNING updated_at`

	queryGetSku = `
		SELECT code, brand, model_key, capacity, color, carrier,
			product_type, is_unlocked, source_tab, updated_at
		FROM skus
		WHERE code = $1`

	queryCountSkus = `SELECT COUNT(*) FROM skus`
)

// Device queries.
const (
	queryUpsertDevice = `
		INSERT INTO devices (
			id, imei, brand, model, capacity, color, carrier, notes,
			generated_sku, tested_at, created_at, updated_at
		) VALUES (
			COALESCE(NULLIF(@id::text, '')::uuid, gen_random_uuid()),
			@imei, @brand, @model, @capacity, @color, @carrier, @notes,
			@generated_sku, @tested_at, now(), now()
		)
		ON CONFLICT (id) DO UPDATE SET
			imei          = EXCLUDED.imei,
			brand         = EXCLUDED.brand,
			model         = EXCLUDED.model,
			capacity      = EXCLUDED.capacity,
			color         = EXCLUDED.color,
			carrier       = EXCLUDED.carrier,
			notes         = EXCLUDED.notes,
			generated_sku = EXCLUDED.generated_sku,
			tested_at     = EXCLUDED.tested_at,
			updated_at    = now()
		RETURNING id, created_at, updated_at`

	deviceColumns = `d.id, d.imei, d.brand, d.model, d.capacity, d.color, d.carrier, d.notes,
			d.generated_sku, d.tested_at, d.created_at, d.updated_at`

	queryGetDevice = `
		SELECT ` + deviceColumns + `
		FROM devices d
		WHERE d.id = $1`

	// Devices with no match row, or whose last attempt found nothing.
	// Excluded devices are never retried.
	queryListUnmatchedDevices = `
		SELECT ` + deviceColumns + `
		FROM devices d
		LEFT JOIN device_matches m ON m.device_id = d.id
		WHERE m.device_id IS NULL
			OR (m.sku_code = '' AND m.match_method <> 'failed_device')
		ORDER BY d.created_at
		LIMIT $1`
)

// Match queries.
const (
	querySaveMatch = `
		INSERT INTO device_matches (
			device_id, sku_code, match_score, match_method, tier, result, matched_at
		) VALUES (
			@device_id, @sku_code, @match_score, @match_method, @tier, @result, now()
		)
		ON CONFLICT (device_id) DO UPDATE SET
			sku_code     = EXCLUDED.sku_code,
			match_score  = EXCLUDED.match_score,
			match_method = EXCLUDED.match_method,
			tier         = EXCLUDED.tier,
			result       = EXCLUDED.result,
			matched_at   = now()
		RETURNING matched_at`

	queryGetMatch = `
		SELECT device_id, result, matched_at
		FROM device_matches
		WHERE device_id = $1`
)

// Job queries.
const (
	queryInsertJobRun = `
		INSERT INTO job_runs (job_name)
		VALUES ($1)
		RETURNING id`

	queryCompleteJobRun = `
		UPDATE job_runs SET
			completed_at  = now(),
			status        = $2,
			error_text    = $3,
			rows_affected = $4
		WHERE id = $1`

	queryListJobRuns = `
		SELECT id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT $2`

	queryMarkStaleJobRunsCrashed = `
		UPDATE job_runs SET
			status       = 'crashed',
			completed_at = now()
		WHERE status = 'running' AND started_at < $1`

	queryDeleteOldJobRuns = `
		DELETE FROM job_runs WHERE started_at < now() - interval '30 days'`

	queryAcquireSchedulerLock = `
		INSERT INTO scheduler_locks (job_name, lock_holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
			SET locked_at   = now(),
				lock_holder = EXCLUDED.lock_holder,
				expires_at  = EXCLUDED.expires_at
			WHERE scheduler_locks.expires_at < now()
		RETURNING job_name`

	queryReleaseSchedulerLock = `
		DELETE FROM scheduler_locks WHERE job_name = $1 AND lock_holder = $2`
)

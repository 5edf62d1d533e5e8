package credits

const (
	// single conditional update - the check and the increment happen in one
	// statement so two racing requests can never both pass the balance check
	queryReserve = `
		UPDATE user_credits
		SET reserved_credits = reserved_credits + $2, updated_at = NOW()
		WHERE user_id = $1 AND credits - reserved_credits >= $2
		RETURNING credits, reserved_credits
	`

	queryAccountExists = `
		SELECT 1 FROM user_credits WHERE user_id = $1
	`

	// releases the hold and debits the actual cost, capping the debit so the
	// balance never drops below what other in-flight reservations still hold.
	// The self-select exposes the pre-update row so the caller can tell
	// whether the cap fired.
	queryFinalize = `
		UPDATE user_credits AS uc
		SET reserved_credits = uc.reserved_credits - $2,
		    credits = uc.credits - LEAST($3, uc.credits - uc.reserved_credits + $2),
		    updated_at = NOW()
		FROM (
			SELECT credits AS prev_credits, reserved_credits AS prev_reserved
			FROM user_credits
			WHERE user_id = $1
			FOR UPDATE
		) AS prev
		WHERE uc.user_id = $1 AND uc.reserved_credits >= $2
		RETURNING prev.prev_credits, prev.prev_reserved
	`

	queryRelease = `
		UPDATE user_credits
		SET reserved_credits = GREATEST(reserved_credits - $2, 0), updated_at = NOW()
		WHERE user_id = $1
	`

	queryAccount = `
		SELECT user_id, credits, reserved_credits, updated_at
		FROM user_credits
		WHERE user_id = $1
	`

	queryGrant = `
		INSERT INTO user_credits (user_id, credits, reserved_credits)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id)
		DO UPDATE SET credits = EXCLUDED.credits, updated_at = NOW()
	`
)

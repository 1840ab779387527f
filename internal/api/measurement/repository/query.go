package measurementRepository

const (
	queryCreateFitting = `
		INSERT INTO fitting_records (
			id,
			user_id,
			session_id,
			label,
			pd,
			pd_left,
			pd_right,
			frame_width,
			bridge,
			face_height,
			face_shape,
			face_size,
			recommendations,
			snapshot_url,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:session_id,
			:label,
			:pd,
			:pd_left,
			:pd_right,
			:frame_width,
			:bridge,
			:face_height,
			:face_shape,
			:face_size,
			:recommendations,
			:snapshot_url,
			:created_at,
			:updated_at
		)
	`

	queryGetFittingByID = `
		SELECT
			id,
			user_id,
			session_id,
			label,
			pd,
			pd_left,
			pd_right,
			frame_width,
			bridge,
			face_height,
			face_shape,
			face_size,
			recommendations,
			snapshot_url,
			created_at,
			updated_at
		FROM fitting_records
		WHERE id = :id
	`

	queryGetFittingsByUserID = `
		SELECT
			id,
			user_id,
			session_id,
			label,
			pd,
			pd_left,
			pd_right,
			frame_width,
			bridge,
			face_height,
			face_shape,
			face_size,
			recommendations,
			snapshot_url,
			created_at,
			updated_at
		FROM fitting_records
		WHERE user_id = :user_id
		ORDER BY created_at DESC
	`

	queryDeleteFitting = `
		DELETE FROM fitting_records
		WHERE id = :id
	`
)

package dynamo

// Key attribute and index names shared by the repos and Bootstrap.
const (
	attrAccountID = "account_id"
	attrEmail     = "email"
	attrCodeID    = "code_id"
	attrTaskID    = "task_id"
	attrUserID    = "user_id"
	attrCreatedAt = "created_at"
	attrEmailID   = "email_id"

	indexEmail         = "email-index"
	indexUserCreatedAt = "user_id-created_at-index"
)

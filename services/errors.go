package services

import "errors"

var (
	ErrLeadNotFound        = errors.New("lead not found")
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrLoadNotFound        = errors.New("load not found")
	ErrTripNotFound        = errors.New("trip not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidStage        = errors.New("invalid sales stage")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrReferenceNotFound   = errors.New("referenced record does not exist")
	ErrNoLeadsInQueue      = errors.New("no leads waiting in the call queue")
	ErrEmptySourceLabel    = errors.New("import source label is required")
	ErrEmptyNote           = errors.New("note content is required")
	ErrNoRecipient         = errors.New("no email address for the carrier")
	ErrUnsupportedFile     = errors.New("unsupported file type, use .csv or .xlsx")
	ErrUploadTooLarge      = errors.New("file exceeds the maximum upload size")
	ErrInvalidUpload       = errors.New("file content does not match its extension")
)

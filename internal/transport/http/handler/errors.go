package handler

const (
	errInternalServer   = "Internal server error"
	errCampaignNotFound = "Campaign not found"
	errInvalidSchedule  = "Campaign schedule is invalid"
)

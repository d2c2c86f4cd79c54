package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                     = "UNKNOWN"
	CodeItemNameEmpty               = "ITEM_NAME_EMPTY"
	CodeItemInvalidPrice            = "ITEM_INVALID_PRICE"
	CodeItemInvalidQuantity         = "ITEM_INVALID_QUANTITY"
	CodeItemClaimed                 = "ITEM_CLAIMED"
	CodeClaimInvalidProportion      = "CLAIM_INVALID_PROPORTION"
	CodeClaimInvalidMethod          = "CLAIM_INVALID_METHOD"
	CodeClaimInvalidUnits           = "CLAIM_INVALID_UNITS"
	CodeClaimInvalidPercentInput    = "CLAIM_INVALID_PERCENT_INPUT"
	CodeClaimExceedsCapacity        = "CLAIM_EXCEEDS_CAPACITY"
	CodeClaimNotOwned               = "CLAIM_NOT_OWNED"
	CodeEvenSplitInvalidCount       = "EVEN_SPLIT_INVALID_COUNT"
	CodeParticipantNameEmpty        = "PARTICIPANT_NAME_EMPTY"
	CodeParticipantInvalidTip       = "PARTICIPANT_INVALID_TIP"
	CodeParticipantAlreadySubmitted = "PARTICIPANT_ALREADY_SUBMITTED"
	CodeSessionInvalidTax           = "SESSION_INVALID_TAX"
	CodeSessionCodeEmpty            = "SESSION_CODE_EMPTY"
	CodeTokenInvalid                = "TOKEN_INVALID"
	CodeTokenExpired                = "TOKEN_EXPIRED"
	CodeNotFound                    = "NOT_FOUND"
	CodeFeedClosed                  = "FEED_CLOSED"
	CodeFeedSubscriptionFailed      = "FEED_SUBSCRIPTION_FAILED"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown: "Something went wrong",

		// Item errors
		CodeItemNameEmpty:       "Item name cannot be empty",
		CodeItemInvalidPrice:    "Item price must be at least 0.01",
		CodeItemInvalidQuantity: "Item quantity must be at least 1",
		CodeItemClaimed:         "Item has been claimed by participants and cannot be deleted",

		// Claim errors
		CodeClaimInvalidProportion:   "Claim proportion must be between 0 and 1",
		CodeClaimInvalidMethod:       "Claim method must be units or percentage",
		CodeClaimInvalidUnits:        "Selected units must be between 0 and {{.Max}}",
		CodeClaimInvalidPercentInput: "Enter a percentage or a fraction like 1/3",
		CodeClaimExceedsCapacity:     "Only {{.Remaining}} of this item is still available",
		CodeClaimNotOwned:            "Claims can only be changed by their owner",

		// Even-split errors
		CodeEvenSplitInvalidCount: "Split count must be at least the number of participants ({{.Participants}})",

		// Participant errors
		CodeParticipantNameEmpty:        "Participant name cannot be empty",
		CodeParticipantInvalidTip:       "Tip percent must be zero or positive",
		CodeParticipantAlreadySubmitted: "Tax and tip have already been submitted",

		// Session errors
		CodeSessionInvalidTax: "Tax percent must be zero or positive",
		CodeSessionCodeEmpty:  "Session code is required",

		// Token errors
		CodeTokenInvalid: "Participant token is invalid",
		CodeTokenExpired: "Participant token has expired",

		// Storage errors
		CodeNotFound: "The requested resource was not found",

		// Feed errors
		CodeFeedClosed:             "The change feed for this session is closed",
		CodeFeedSubscriptionFailed: "Could not subscribe to the session change feed",
	},
}

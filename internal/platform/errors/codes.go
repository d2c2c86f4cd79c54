// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Item errors
	CodeItemNameEmpty       Code = "ITEM_NAME_EMPTY"
	CodeItemInvalidPrice    Code = "ITEM_INVALID_PRICE"
	CodeItemInvalidQuantity Code = "ITEM_INVALID_QUANTITY"
	CodeItemClaimed         Code = "ITEM_CLAIMED"

	// Claim errors
	CodeClaimInvalidProportion   Code = "CLAIM_INVALID_PROPORTION"
	CodeClaimInvalidMethod       Code = "CLAIM_INVALID_METHOD"
	CodeClaimInvalidUnits        Code = "CLAIM_INVALID_UNITS"
	CodeClaimInvalidPercentInput Code = "CLAIM_INVALID_PERCENT_INPUT"
	CodeClaimExceedsCapacity     Code = "CLAIM_EXCEEDS_CAPACITY"
	CodeClaimNotOwned            Code = "CLAIM_NOT_OWNED"

	// Even-split errors
	CodeEvenSplitInvalidCount Code = "EVEN_SPLIT_INVALID_COUNT"

	// Participant errors
	CodeParticipantNameEmpty        Code = "PARTICIPANT_NAME_EMPTY"
	CodeParticipantInvalidTip       Code = "PARTICIPANT_INVALID_TIP"
	CodeParticipantAlreadySubmitted Code = "PARTICIPANT_ALREADY_SUBMITTED"

	// Session errors
	CodeSessionInvalidTax Code = "SESSION_INVALID_TAX"
	CodeSessionCodeEmpty  Code = "SESSION_CODE_EMPTY"

	// Token errors
	CodeTokenInvalid Code = "TOKEN_INVALID"
	CodeTokenExpired Code = "TOKEN_EXPIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Feed errors
	CodeFeedClosed             Code = "FEED_CLOSED"
	CodeFeedSubscriptionFailed Code = "FEED_SUBSCRIPTION_FAILED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeItemNameEmpty,
		CodeItemInvalidPrice,
		CodeItemInvalidQuantity,
		CodeClaimInvalidProportion,
		CodeClaimInvalidMethod,
		CodeClaimInvalidUnits,
		CodeClaimInvalidPercentInput,
		CodeEvenSplitInvalidCount,
		CodeParticipantNameEmpty,
		CodeParticipantInvalidTip,
		CodeSessionInvalidTax,
		CodeSessionCodeEmpty:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeItemClaimed,
		CodeClaimExceedsCapacity,
		CodeParticipantAlreadySubmitted:
		return codes.FailedPrecondition

	// PermissionDenied - actor may not touch the record
	case CodeClaimNotOwned:
		return codes.PermissionDenied

	// Unauthenticated - token problems
	case CodeTokenInvalid,
		CodeTokenExpired:
		return codes.Unauthenticated

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// Unavailable - feed/transport problems
	case CodeFeedClosed,
		CodeFeedSubscriptionFailed:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

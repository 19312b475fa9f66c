// Package errors provides structured error handling for contract calls.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input/structural errors
	CodeInvalidAddress     Code = "INVALID_ADDRESS"
	CodeInvalidURL         Code = "INVALID_URL"
	CodeInvalidCoin        Code = "INVALID_COIN"
	CodeDescriptionTooLong Code = "DESCRIPTION_TOO_LONG"
	CodeInvalidRoyalties   Code = "INVALID_ROYALTIES"
	CodeMismatchedLengths  Code = "MISMATCHED_LENGTHS"

	// Authorization errors. NotOwner deliberately covers every failed
	// owner/approval/operator branch without distinguishing the cause.
	CodeNotOwner       Code = "NOT_OWNER"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeNoPendingOwner Code = "NO_PENDING_OWNER"

	// State-conflict errors
	CodeClaimed                Code = "CLAIMED"
	CodeExpired                Code = "EXPIRED"
	CodeCollectionInfoFrozen   Code = "COLLECTION_INFO_FROZEN"
	CodeCharacterNotFrozen     Code = "CHARACTER_NOT_FROZEN"
	CodeCharacterAlreadyLocked Code = "CHARACTER_ALREADY_LOCKED"
	CodeRoyaltyShareIncreased  Code = "ROYALTY_SHARE_INCREASED"
	CodeIDExists               Code = "ID_EXISTS"

	// Economic errors
	CodePayment            Code = "PAYMENT_ERROR"
	CodeIncorrectMintFunds Code = "INCORRECT_MINT_FUNDS"
	CodeInvalidBurnRatio   Code = "INVALID_BURN_RATIO"
	CodeNoMintDestination  Code = "NO_MINT_DESTINATION"
	CodeInsufficientFunds  Code = "INSUFFICIENT_FUNDS"

	// Catalog-lookup errors
	CodeInvalidRarity        Code = "INVALID_RARITY"
	CodeInvalidCharacter     Code = "INVALID_CHARACTER"
	CodeInvalidBundle        Code = "INVALID_BUNDLE"
	CodeInvalidLootbox       Code = "INVALID_LOOTBOX"
	CodeInvalidTrait         Code = "INVALID_TRAIT"
	CodeInvalidTraitMint     Code = "INVALID_TRAIT_MINT"
	CodeInvalidPossibilities Code = "INVALID_POSSIBILITIES"
	CodeNotCharacterOwner    Code = "NOT_CHARACTER_OWNER"
	CodeNotTraitOwner        Code = "NOT_TRAIT_OWNER"
	CodeInvalidMintTraits    Code = "INVALID_MINT_TRAITS"
	CodeInvalidEmptyMint     Code = "INVALID_EMPTY_MINT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Cross-contract errors
	CodeUnexpectedReply Code = "UNEXPECTED_REPLY"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidAddress,
		CodeInvalidURL,
		CodeInvalidCoin,
		CodeDescriptionTooLong,
		CodeInvalidRoyalties,
		CodeMismatchedLengths,
		CodeInvalidBurnRatio,
		CodeNoMintDestination,
		CodePayment,
		CodeIncorrectMintFunds,
		CodeInvalidPossibilities,
		CodeInvalidMintTraits,
		CodeInvalidEmptyMint,
		CodeExpired:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow the operation
	case CodeCollectionInfoFrozen,
		CodeCharacterNotFrozen,
		CodeCharacterAlreadyLocked,
		CodeRoyaltyShareIncreased,
		CodeInsufficientFunds,
		CodeNoPendingOwner:
		return codes.FailedPrecondition

	// PermissionDenied - caller lacks rights
	case CodeNotOwner,
		CodeUnauthorized,
		CodeNotCharacterOwner,
		CodeNotTraitOwner:
		return codes.PermissionDenied

	// AlreadyExists - duplicate keys
	case CodeClaimed,
		CodeIDExists:
		return codes.AlreadyExists

	// NotFound - resource or catalog entry doesn't exist
	case CodeNotFound,
		CodeInvalidRarity,
		CodeInvalidCharacter,
		CodeInvalidBundle,
		CodeInvalidLootbox,
		CodeInvalidTrait,
		CodeInvalidTraitMint:
		return codes.NotFound

	default:
		return codes.Internal
	}
}

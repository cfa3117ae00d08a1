package dto

// CreateChallengeRequest creates the off-chain challenge row. The on-chain
// index is assigned later, once the creation transaction confirms.
type CreateChallengeRequest struct {
	Title              string `json:"title" binding:"required"`
	Description        string `json:"description"`
	DurationDays       int    `json:"durationDays" binding:"required,min=1"`
	BuyIn              uint64 `json:"buyIn" binding:"required,min=1"` // display units
	VerificationMethod string `json:"verificationMethod"`
	CreatorAddress     string `json:"creatorAddress" binding:"required"`
}

// AssignOnchainRequest records the immutable on-chain index after creation
// confirms.
type AssignOnchainRequest struct {
	OnchainID uint64 `json:"onchainId" binding:"required"`
	TxHash    string `json:"txHash"`
}

// JoinChallengeRequest unions a participant into the challenge list after a
// confirmed join transaction.
type JoinChallengeRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	TxHash        string `json:"txHash"`
}

// ProfileRequest upserts a wallet profile.
type ProfileRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Bio      string `json:"bio"`
}

package dto

// BuildJoinRequest asks for an unsigned join_challenge transaction the
// wallet can sign itself. challengeId is the on-chain index, not the
// off-chain row id.
type BuildJoinRequest struct {
	SenderAddress string `json:"senderAddress" binding:"required"`
	ChallengeID   uint64 `json:"challengeId" binding:"required"`
}

// BuildCreateRequest asks for an unsigned create_challenge transaction.
// buyIn arrives in display units and is scaled to octas by the builder.
type BuildCreateRequest struct {
	SenderAddress string `json:"senderAddress" binding:"required"`
	Title         string `json:"title" binding:"required"`
	DurationDays  uint64 `json:"durationDays" binding:"required,min=1"`
	BuyIn         uint64 `json:"buyIn" binding:"required,min=1"`
}

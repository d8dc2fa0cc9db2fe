package app

type Reason struct {
	Code    string
	Message string
}

func (r Reason) ReasonCode() string {
	return r.Code
}

var reasonMessages = map[string]string{}

// NewReason registers the message shown to clients for code.
func NewReason(c, m string) Reason {
	reasonMessages[c] = m
	return Reason{
		Code:    c,
		Message: m,
	}
}

// ReasonMessage returns the client message registered for code.
func ReasonMessage(code string) (string, bool) {
	m, ok := reasonMessages[code]
	return m, ok
}

// Business rejections.
var (
	ReasonSettlementNotFound   = NewReason("SETTLEMENT_NOT_FOUND", "settlement not found")
	ReasonNotOwner             = NewReason("NOT_OWNER", "settlement is not owned by the player")
	ReasonInvalidSettlementID  = NewReason("INVALID_SETTLEMENT_ID", "invalid settlement id")
	ReasonUnknownBuilding      = NewReason("UNKNOWN_BUILDING", "unknown building")
	ReasonBuildingNotAvailable = NewReason("BUILDING_NOT_AVAILABLE", "building is not available in this settlement")
	ReasonBuildingLimit        = NewReason("BUILDING_LIMIT_REACHED", "building limit reached")
	ReasonBuildCost            = NewReason("BUILD_COST", "not enough resources to build")
	ReasonTaxRateOutOfRange    = NewReason("TAX_RATE_OUT_OF_RANGE", "tax rate must be an integer between 0 and 10")

	ReasonCapitalAlreadyChosen = NewReason("CAPITAL_ALREADY_CHOSEN", "a capital has already been chosen")
	ReasonAlreadyOwned         = NewReason("ALREADY_OWNED", "settlement is already owned by the player")
	ReasonCaptureMethod        = NewReason("INVALID_CAPTURE_METHOD", "capture method must be military or influence")
	ReasonCaptureMilitary      = NewReason("CAPTURE_MILITARY", "not enough military to capture")
	ReasonCaptureInfluence     = NewReason("CAPTURE_INFLUENCE", "not enough influence to capture")

	ReasonTransferAmount   = NewReason("INVALID_TRANSFER_AMOUNT", "transfer amount must be positive")
	ReasonTransferSameCity = NewReason("TRANSFER_SAME_SETTLEMENT", "source and destination must differ")
	ReasonTransferTroops   = NewReason("TRANSFER_TROOPS", "not enough troops in the source settlement")
	ReasonDeployTroops     = NewReason("DEPLOY_TROOPS", "not enough military to deploy")

	ReasonListingNotFound   = NewReason("LISTING_NOT_FOUND", "listing not found")
	ReasonListingSide       = NewReason("INVALID_LISTING_TYPE", "listing type must be buy or sell")
	ReasonListingResource   = NewReason("RESOURCE_NOT_TRADABLE", "resource cannot be traded")
	ReasonListingAmount     = NewReason("INVALID_LISTING_AMOUNT", "amount and price must be positive")
	ReasonListingStock      = NewReason("LISTING_STOCK", "not enough resource to list")
	ReasonListingGold       = NewReason("LISTING_GOLD", "not enough gold to place the order")
	ReasonCannotBuyOwn      = NewReason("CANNOT_BUY_OWN_LISTING", "cannot fulfil your own listing")
	ReasonPurchaseGold      = NewReason("PURCHASE_GOLD", "not enough gold to buy")
	ReasonPurchaseStock     = NewReason("PURCHASE_STOCK", "not enough resource to deliver")
	ReasonNotListingOwner   = NewReason("NOT_LISTING_OWNER", "only the listing owner may cancel")
	ReasonInvalidGameState  = NewReason("INVALID_GAME_STATE", "game state payload is invalid")
	ReasonUnknownResource   = NewReason("UNKNOWN_RESOURCE", "unknown resource")
	ReasonSuspiciousSatJump = NewReason("SUSPICIOUS_SATISFACTION", "suspicious satisfaction change suppressed")
)

// Technical reasons, logged only.
var (
	ReasonRepoLoadFail = NewReason("GAME_STATE_LOAD_FAIL", "game state load failed")
	ReasonRepoSaveFail = NewReason("GAME_STATE_SAVE_FAIL", "game state save failed")
	ReasonArchiveFail  = NewReason("ARCHIVE_WRITE_FAIL", "world archive write failed")
	ReasonActorTimeout = NewReason("ACTOR_TIMEOUT", "world actor did not answer in time")
	ReasonTickPanic    = NewReason("TICK_PANIC", "simulation tick panicked")
)

package nakama

// RPC ids registered with Nakama.
const (
	RpcMatchCreate = "darts_match_create"
	RpcMatchJoin   = "darts_match_join"
	RpcMatchStart  = "darts_match_start"
	RpcMatchEdit   = "darts_match_edit"
	RpcMatchDelete = "darts_match_delete"
	RpcMatchScore  = "darts_match_score"
	RpcMatchSettle = "darts_match_settle"
	RpcMatchList   = "darts_match_list"
	RpcVoiceToken  = "darts_voice_token"
)

// Notification codes for match events. Nakama reserves codes <= 0.
const (
	NotifyPlayerJoined  = 101
	NotifyMatchStarted  = 102
	NotifyRoundRecorded = 103
	NotifyMatchEnded    = 104
	NotifyMatchDeleted  = 105
)

// Storage collection holding finished match records, owned by the system user.
const finishedMatchCollection = "darts_matches"

package normalize

// Accepted upstream spellings per canonical field, in priority order. Adding a
// new upstream payload shape means adding a spelling here.
//
// Lookup first tries every spelling verbatim, then falls back to a folded
// comparison (case, underscores and the __c/__r suffixes ignored), so
// "Status__c", "status__c" and "status" all resolve.
var (
	snapshotContest        = []string{"contest", "Contest__r", "Contest"}
	snapshotActiveShowdown = []string{"activeShowdown", "showdown", "currentShowdown", "Active_Showdown__r"}
	snapshotBracket        = []string{"bracket", "showdowns", "Showdowns__r"}
	snapshotPairings       = []string{"pairings", "couples", "Couples__r"}
	snapshotDancers        = []string{"dancers", "Dancers__r"}
	snapshotContestID      = []string{"contestId", "Contest__c", "contest_id"}
)

var (
	fieldID = []string{"Id", "id"}

	contestName              = []string{"Name", "name", "Contest_Name__c"}
	contestStatus            = []string{"Status__c", "status__c", "status", "contestStatus"}
	contestCurrentRound      = []string{"Current_Round__c", "currentRound", "current_round"}
	contestActiveShowdown    = []string{"Active_Showdown__c", "activeShowdownId", "active_showdown_id", "Active_Showdown__r", "activeShowdown"}
	contestJudgingModel      = []string{"Judging_Model__c", "judgingModel", "judging_model"}
	contestJudgePanelSize    = []string{"Judge_Panel_Size__c", "judgePanelSize", "judge_panel_size"}
	contestEventID           = []string{"Event__c", "eventId", "event_id", "Event__r", "event"}
	contestResultsVisibility = []string{"Results_Visibility__c", "resultsVisibility", "results_visibility"}

	showdownContestID   = []string{"Contest__c", "contestId", "contest_id", "Contest__r", "contest"}
	showdownName        = []string{"Name", "name", "Showdown_Name__c"}
	showdownStatus      = []string{"Status__c", "status__c", "status"}
	showdownRound       = []string{"Round__c", "round", "roundName"}
	showdownMatchNumber = []string{"Match_Number__c", "matchNumber", "match_number"}
	showdownVoteOpen    = []string{"Vote_Open_Time__c", "voteOpenTime", "vote_open_time", "votingOpensAt"}
	showdownVoteClose   = []string{"Vote_Close_Time__c", "voteCloseTime", "vote_close_time", "votingClosesAt"}
	showdownRedCouple   = []string{"Red_Couple__c", "redCoupleId", "red_couple_id", "Red_Couple__r", "redCouple", "red"}
	showdownBlueCouple  = []string{"Blue_Couple__c", "blueCoupleId", "blue_couple_id", "Blue_Couple__r", "blueCouple", "blue"}
	showdownRedVotes    = []string{"Red_Audience_Votes__c", "redAudienceVotes", "red_audience_votes"}
	showdownBlueVotes   = []string{"Blue_Audience_Votes__c", "blueAudienceVotes", "blue_audience_votes"}
	showdownWinner      = []string{"Winner__c", "winner", "winningSide"}

	coupleID         = []string{"Id", "id", "coupleId", "couple_id"}
	coupleContestID  = []string{"Contest__c", "contestId", "contest_id", "Contest__r", "contest"}
	coupleLead       = []string{"Lead__c", "leadId", "lead_id", "Lead__r", "lead"}
	coupleFollow     = []string{"Follow__c", "followId", "follow_id", "Follow__r", "follow"}
	coupleLeadName   = []string{"Lead_Name__c", "leadName", "lead_name"}
	coupleFollowName = []string{"Follow_Name__c", "followName", "follow_name"}

	dancerID   = []string{"Id", "id", "dancerId", "dancer_id"}
	dancerName = []string{"Name", "name", "Full_Name__c", "fullName", "displayName"}
)

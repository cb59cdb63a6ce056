package api

import "strconv"

// Fixed ids of the demo contest. They follow the upstream id format so the
// seeded data passes the same validation as relayed data.
const (
	SeedContestID    = "a03TESTCONTEST00001"
	SeedShowdownID   = "a07TESTSHOWDOWN00001"
	SeedRedCoupleID  = "a04TESTCOUPLE00001"
	SeedBlueCoupleID = "a04TESTCOUPLE00002"
)

type SeedOptions struct {
	ContestName       string
	ContestStatus     string
	CurrentRound      string
	JudgingModel      string
	JudgePanelSize    int
	ResultsVisibility string

	RedLead    string
	RedFollow  string
	BlueLead   string
	BlueFollow string

	ShowdownName   string
	ShowdownStatus string
	ShowdownRound  string
}

// SeedOptionsFromEnv reads SEED_* overrides through getenv, usually os.Getenv.
func SeedOptionsFromEnv(getenv func(string) string) SeedOptions {
	get := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	round := get("SEED_CURRENT_ROUND", "Finals")
	panel, err := strconv.Atoi(get("SEED_JUDGE_PANEL_SIZE", "3"))
	if err != nil {
		panel = 3
	}

	return SeedOptions{
		ContestName:       get("SEED_CONTEST_NAME", "Test Contest"),
		ContestStatus:     get("SEED_CONTEST_STATUS", "ROUND_ACTIVE"),
		CurrentRound:      round,
		JudgingModel:      get("SEED_JUDGING_MODEL", "Judges_And_Audience"),
		JudgePanelSize:    panel,
		ResultsVisibility: get("SEED_RESULTS_VISIBILITY", "PUBLIC"),
		RedLead:           get("SEED_RED_LEAD", "Red Lead"),
		RedFollow:         get("SEED_RED_FOLLOW", "Red Follow"),
		BlueLead:          get("SEED_BLUE_LEAD", "Blue Lead"),
		BlueFollow:        get("SEED_BLUE_FOLLOW", "Blue Follow"),
		ShowdownName:      get("SEED_SHOWDOWN_NAME", "Match 1"),
		ShowdownStatus:    get("SEED_SHOWDOWN_STATUS", "VOTING_OPEN"),
		ShowdownRound:     get("SEED_SHOWDOWN_ROUND", round),
	}
}

// SeedSnapshot renders the demo contest in the upstream field spelling.
func SeedSnapshot(opts SeedOptions) map[string]any {
	showdown := map[string]any{
		"Id":              SeedShowdownID,
		"Contest__c":      SeedContestID,
		"Name":            opts.ShowdownName,
		"Status__c":       opts.ShowdownStatus,
		"Round__c":        opts.ShowdownRound,
		"Match_Number__c": 1,
		"Red_Couple__c":   SeedRedCoupleID,
		"Blue_Couple__c":  SeedBlueCoupleID,
	}

	return map[string]any{
		"contest": map[string]any{
			"Id":                    SeedContestID,
			"Name":                  opts.ContestName,
			"Status__c":             opts.ContestStatus,
			"Current_Round__c":      opts.CurrentRound,
			"Active_Showdown__c":    SeedShowdownID,
			"Judging_Model__c":      opts.JudgingModel,
			"Judge_Panel_Size__c":   opts.JudgePanelSize,
			"Results_Visibility__c": opts.ResultsVisibility,
		},
		"activeShowdown": showdown,
		"bracket":        []any{showdown},
		"pairings": []any{
			map[string]any{
				"Id":             SeedRedCoupleID,
				"Contest__c":     SeedContestID,
				"Lead_Name__c":   opts.RedLead,
				"Follow_Name__c": opts.RedFollow,
			},
			map[string]any{
				"Id":             SeedBlueCoupleID,
				"Contest__c":     SeedContestID,
				"Lead_Name__c":   opts.BlueLead,
				"Follow_Name__c": opts.BlueFollow,
			},
		},
	}
}

package statsapi

// liveFeedResponse is the subset of the v1.1 live feed the tracker reads.
type liveFeedResponse struct {
	GamePk   int              `json:"gamePk"`
	GameData gameDataResponse `json:"gameData"`
	LiveData liveDataResponse `json:"liveData"`
}

type gameDataResponse struct {
	Status   statusResponse   `json:"status"`
	Datetime datetimeResponse `json:"datetime"`
	Teams    struct {
		Away teamResponse `json:"away"`
		Home teamResponse `json:"home"`
	} `json:"teams"`
}

type statusResponse struct {
	AbstractGameState string `json:"abstractGameState"`
	DetailedState     string `json:"detailedState"`
	CodedGameState    string `json:"codedGameState"`
}

type datetimeResponse struct {
	DateTime string `json:"dateTime"`
}

type teamResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ClubName string `json:"clubName"`
	TeamName string `json:"teamName"`
}

type liveDataResponse struct {
	Plays struct {
		AllPlays []playResponse `json:"allPlays"`
	} `json:"plays"`
	Linescore linescoreResponse `json:"linescore"`
}

type linescoreResponse struct {
	InningState          string `json:"inningState"`
	CurrentInningOrdinal string `json:"currentInningOrdinal"`
}

type playResponse struct {
	Result struct {
		Type        string `json:"type"`
		Event       string `json:"event"`
		EventType   string `json:"eventType"`
		Description string `json:"description"`
		AwayScore   int    `json:"awayScore"`
		HomeScore   int    `json:"homeScore"`
	} `json:"result"`
	About struct {
		AtBatIndex    int  `json:"atBatIndex"`
		IsComplete    bool `json:"isComplete"`
		IsScoringPlay bool `json:"isScoringPlay"`
	} `json:"about"`
	Count struct {
		Outs int `json:"outs"`
	} `json:"count"`
	PlayEvents []playEventResponse `json:"playEvents"`
}

type playEventResponse struct {
	IsPitch bool `json:"isPitch"`
	Details struct {
		IsInPlay      bool   `json:"isInPlay"`
		Event         string `json:"event"`
		EventType     string `json:"eventType"`
		Description   string `json:"description"`
		IsScoringPlay bool   `json:"isScoringPlay"`
		AwayScore     int    `json:"awayScore"`
		HomeScore     int    `json:"homeScore"`
	} `json:"details"`
}

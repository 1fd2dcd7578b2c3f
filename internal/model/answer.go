package model

// ProfileAnswer is one Q&A contribution, joined client-side from the
// Stack Exchange answers and questions endpoints. Its lifecycle is
// independent of Contribution.
type ProfileAnswer struct {
	ID            int64    `json:"id"`
	QuestionID    int64    `json:"questionId"`
	QuestionTitle string   `json:"questionTitle"`
	IsAccepted    bool     `json:"isAccepted"`
	Score         int      `json:"score"`
	URL           string   `json:"url"`
	CreatedAt     int64    `json:"createdAt"`
	Tags          []string `json:"tags"`
}

// BadgeCounts holds a Stack Exchange user's badge tallies.
type BadgeCounts struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

// ProfileUser is the Q&A profile displayed next to the answer list.
type ProfileUser struct {
	DisplayName  string      `json:"displayName"`
	Reputation   int         `json:"reputation"`
	BadgeCounts  BadgeCounts `json:"badgeCounts"`
	ProfileImage string      `json:"profileImage"`
}

package model

// User is the authorized ClickUp user.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Assignee is a user attached to a task.
type Assignee struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Team is a ClickUp workspace. Tasks are fetched per team.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

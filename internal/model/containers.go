package model

// Space, Folder and List are the ClickUp containers below a team. They only
// matter for resolving where new tasks go: a list hangs either directly off
// a space or inside a folder.

type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Folder struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Lists []List `json:"lists"`
}

type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

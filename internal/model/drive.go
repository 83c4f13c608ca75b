package model

type Drive struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	Total int64  `json:"total"`
	Used  int64  `json:"used"`
}

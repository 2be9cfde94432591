package model

// ActionKind identifies a move a player can make
type ActionKind string

const (
	ActionGiveClue   ActionKind = "give_clue"
	ActionSelectWord ActionKind = "select_word"
	ActionEndTurn    ActionKind = "end_turn"
)

// Action is a proposed move against a session
type Action struct {
	Kind       ActionKind
	ClueText   string
	ClueNumber int
	Word       string
}

// GiveClue builds a clue action
func GiveClue(text string, number int) Action {
	return Action{Kind: ActionGiveClue, ClueText: text, ClueNumber: number}
}

// SelectWord builds a word selection action
func SelectWord(word string) Action {
	return Action{Kind: ActionSelectWord, Word: word}
}

// EndTurn builds an end-of-turn action
func EndTurn() Action {
	return Action{Kind: ActionEndTurn}
}

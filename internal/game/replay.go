package game

// Move 一次已记录的猜测
type Move struct {
	AttemptNo int
	Letter    string
}

// ReplayStep 回放中的一步
type ReplayStep struct {
	AttemptNo      int      `json:"attemptNo"`
	Letter         string   `json:"letter"`
	Success        bool     `json:"success"`
	Repeated       bool     `json:"repeated"`
	MaskedWord     string   `json:"maskedWord"`
	Errors         int      `json:"errors"`
	GuessedLetters []string `json:"guessedLetters"`
}

// Replay 根据记录的猜测重建对局，返回每一步和最终状态
//
// 成功与否按单词重新计算，不信任记录中的 success 字段。
func Replay(playerName, secretWord string, maxErrors int, moves []Move) ([]ReplayStep, *State) {
	state := NewState(maxErrors)
	state.Start(playerName, secretWord)

	steps := make([]ReplayStep, 0, len(moves))
	for _, m := range moves {
		if state.IsOver() {
			break
		}
		out := state.Guess(m.Letter)
		steps = append(steps, ReplayStep{
			AttemptNo:      m.AttemptNo,
			Letter:         out.Letter,
			Success:        out.Success,
			Repeated:       !out.IsNew,
			MaskedWord:     state.MaskedWord(),
			Errors:         state.Errors(),
			GuessedLetters: state.GuessedLetters(),
		})
	}
	return steps, state
}

package game

import (
	"fmt"
	"strings"
)

// DefaultMaxErrors 默认允许的错误次数
const DefaultMaxErrors = 6

// Placeholder 未猜中字母的占位符
const Placeholder = "_"

// Status 游戏状态
type Status string

const (
	StatusIdle    Status = "idle"    // 未开始
	StatusPlaying Status = "playing" // 进行中
	StatusWon     Status = "won"     // 猜中
	StatusLost    Status = "lost"    // 失败
)

// 持久化结果值
const (
	ResultInProgress = "in-progress"
	ResultWin        = "win"
	ResultLose       = "lose"
)

// Result 转换为持久化的结果值
func (s Status) Result() string {
	switch s {
	case StatusWon:
		return ResultWin
	case StatusLost:
		return ResultLose
	default:
		return ResultInProgress
	}
}

// IsTerminal 是否为终止状态
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}

// 合法的状态转换
var transitions = map[Status][]Status{
	StatusIdle:    {StatusPlaying},
	StatusPlaying: {StatusPlaying, StatusWon, StatusLost},
	StatusWon:     {StatusPlaying},
	StatusLost:    {StatusPlaying},
}

// Outcome 一次猜测的结果
type Outcome struct {
	IsNew   bool   `json:"isNew"`
	Success bool   `json:"success"`
	Letter  string `json:"letter"`
}

// Snapshot 状态快照
type Snapshot struct {
	PlayerName     string   `json:"playerName"`
	MaskedWord     string   `json:"maskedWord"`
	Errors         int      `json:"errors"`
	MaxErrors      int      `json:"maxErrors"`
	GuessedLetters []string `json:"guessedLetters"`
	Status         Status   `json:"status"`
	SecretWord     string   `json:"secretWord,omitempty"`
}

// State 单局游戏状态
//
// 终止状态（won/lost）下 Guess 不再修改任何字段，只有 Start 能重新开局。
type State struct {
	playerName     string
	secretWord     string
	guessedLetters []string
	errors         int
	maxErrors      int
	status         Status
}

// NewState 创建游戏状态，maxErrors<=0 时使用默认值
func NewState(maxErrors int) *State {
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}
	return &State{
		maxErrors: maxErrors,
		status:    StatusIdle,
	}
}

// Start 开始新的一局
func (s *State) Start(playerName, secretWord string) {
	if playerName == "" {
		playerName = "Player"
	}
	s.playerName = playerName
	s.secretWord = strings.ToLower(secretWord)
	s.guessedLetters = []string{}
	s.errors = 0
	s.setStatus(StatusPlaying)
}

// Guess 猜一个字母
func (s *State) Guess(raw string) Outcome {
	if s.status != StatusPlaying || raw == "" {
		return Outcome{}
	}

	letter := strings.ToLower(raw)
	if !IsValidLetter(letter) {
		return Outcome{Letter: letter}
	}

	if s.hasGuessed(letter) {
		// 重复字母只重新计算结果，不改变计数
		return Outcome{Success: strings.Contains(s.secretWord, letter), Letter: letter}
	}

	s.guessedLetters = append(s.guessedLetters, letter)
	success := strings.Contains(s.secretWord, letter)
	if !success {
		s.errors++
	}
	s.updateStatus()

	return Outcome{IsNew: true, Success: success, Letter: letter}
}

// updateStatus 猜测后重新计算状态，失败优先
func (s *State) updateStatus() {
	if s.errors >= s.maxErrors {
		s.setStatus(StatusLost)
		return
	}
	if s.IsWordGuessed() {
		s.setStatus(StatusWon)
	}
}

func (s *State) setStatus(to Status) {
	for _, allowed := range transitions[s.status] {
		if allowed == to {
			s.status = to
			return
		}
	}
	panic(fmt.Sprintf("game: invalid transition %s -> %s", s.status, to))
}

// IsWordGuessed 单词的所有字母是否都已猜中
func (s *State) IsWordGuessed() bool {
	if s.secretWord == "" {
		return false
	}
	for _, ch := range s.secretWord {
		if !s.hasGuessed(strings.ToLower(string(ch))) {
			return false
		}
	}
	return true
}

// MaskedWord 返回 "_ _ a _ _ t" 形式的掩码
func (s *State) MaskedWord() string {
	return Mask(s.secretWord, s.guessedLetters)
}

// IsOver 游戏是否结束
func (s *State) IsOver() bool {
	return s.status.IsTerminal()
}

func (s *State) hasGuessed(letter string) bool {
	for _, l := range s.guessedLetters {
		if l == letter {
			return true
		}
	}
	return false
}

func (s *State) Status() Status     { return s.status }
func (s *State) Errors() int        { return s.errors }
func (s *State) MaxErrors() int     { return s.maxErrors }
func (s *State) SecretWord() string { return s.secretWord }
func (s *State) PlayerName() string { return s.playerName }

// GuessedLetters 返回已猜字母的副本
func (s *State) GuessedLetters() []string {
	out := make([]string, len(s.guessedLetters))
	copy(out, s.guessedLetters)
	return out
}

// Snapshot 返回当前状态，进行中时隐藏单词
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		PlayerName:     s.playerName,
		MaskedWord:     s.MaskedWord(),
		Errors:         s.errors,
		MaxErrors:      s.maxErrors,
		GuessedLetters: s.GuessedLetters(),
		Status:         s.status,
	}
	if s.IsOver() {
		snap.SecretWord = s.secretWord
	}
	return snap
}

// Mask 按已猜字母生成掩码
func Mask(word string, guessed []string) string {
	if word == "" {
		return ""
	}
	set := make(map[string]struct{}, len(guessed))
	for _, l := range guessed {
		set[l] = struct{}{}
	}
	parts := make([]string, 0, len(word))
	for _, ch := range word {
		c := string(ch)
		if _, ok := set[strings.ToLower(c)]; ok {
			parts = append(parts, c)
		} else {
			parts = append(parts, Placeholder)
		}
	}
	return strings.Join(parts, " ")
}

// IsValidLetter 是否为单个小写拉丁字母
func IsValidLetter(letter string) bool {
	return len(letter) == 1 && letter[0] >= 'a' && letter[0] <= 'z'
}

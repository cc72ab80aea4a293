package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/models"
)

const clearSequence = "\033[2J\033[;H"

// View 终端视图，所有输入输出都经过 in/out
type View struct {
	in    *bufio.Reader
	out   io.Writer
	clear bool
}

// NewView 创建视图，clear 为 true 时每屏前清屏
func NewView(in io.Reader, out io.Writer, clear bool) *View {
	return &View{in: bufio.NewReader(in), out: out, clear: clear}
}

func (v *View) write(format string, args ...interface{}) {
	fmt.Fprintf(v.out, format, args...)
}

func (v *View) writeln(format string, args ...interface{}) {
	fmt.Fprintf(v.out, format+"\n", args...)
}

func (v *View) clearScreen() {
	if v.clear {
		fmt.Fprint(v.out, clearSequence)
	}
}

// readLine 读取一行，输入结束时 ok=false
func (v *View) readLine() (string, bool) {
	line, err := v.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// ShowHelp 用法说明
func (v *View) ShowHelp(name string) {
	v.writeln(`Hangman`)
	v.writeln("")
	v.writeln("Usage:")
	v.writeln("  %s [--new|-n]        start a new game", name)
	v.writeln("  %s --list|-l         list saved games", name)
	v.writeln("  %s --replay|-r ID    replay game ID step by step", name)
	v.writeln("  %s --help|-h         show this help", name)
	v.writeln("")
	v.writeln("  %s                   interactive menu", name)
	v.writeln("")
}

// ShowMainMenu 主菜单
func (v *View) ShowMainMenu() {
	v.clearScreen()
	v.writeln("=== Hangman: menu ===")
	v.writeln("")
	v.writeln("1. New game")
	v.writeln("2. Saved games")
	v.writeln("3. Replay a game")
	v.writeln("0. Exit")
	v.writeln("")
}

// AskMenuChoice 读取菜单选项，输入结束视为退出
func (v *View) AskMenuChoice() string {
	for {
		v.write("Choose an item (0-3): ")
		line, ok := v.readLine()
		if !ok {
			return "0"
		}
		switch line {
		case "0", "1", "2", "3":
			return line
		}
		v.writeln("Invalid choice. Enter a number from 0 to 3.")
	}
}

// AskReplayGameID 读取要回放的对局ID，0 表示取消
func (v *View) AskReplayGameID() uint {
	for {
		v.write("Game ID to replay (0 to cancel): ")
		line, ok := v.readLine()
		if !ok {
			return 0
		}
		if line == "" {
			v.writeln("Empty input. Try again.")
			continue
		}
		id, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			v.writeln("Enter a non-negative integer.")
			continue
		}
		return uint(id)
	}
}

// WaitForEnter 等待回车
func (v *View) WaitForEnter(message string) {
	v.writeln(message)
	v.readLine()
}

// ShowExit 退出提示
func (v *View) ShowExit() {
	v.clearScreen()
	v.writeln("Bye!")
}

// ShowWelcome 新局欢迎语
func (v *View) ShowWelcome() {
	v.clearScreen()
	v.writeln("=== Hangman ===")
	v.writeln("The computer picks a %d-letter word (a-z).", game.WordLength)
	v.writeln("Guess every letter before the man is hanged.")
	v.writeln("")
}

// AskPlayerName 读取玩家名，输入结束时为 Player
func (v *View) AskPlayerName() string {
	for {
		v.write("Player name: ")
		line, ok := v.readLine()
		if !ok {
			return "Player"
		}
		if line != "" {
			return line
		}
		v.writeln("Name cannot be empty. Try again.")
	}
}

// AskLetter 读取一个字母（取输入的第一个字符），输入结束时 ok=false
func (v *View) AskLetter(attemptNo int) (string, bool) {
	for {
		v.write("Attempt %d. Enter a letter: ", attemptNo)
		line, ok := v.readLine()
		if !ok {
			return "", false
		}
		if line == "" {
			v.writeln("Empty input. Try again.")
			continue
		}

		r, _ := utf8.DecodeRuneInString(line)
		letter := strings.ToLower(string(r))
		if !game.IsValidLetter(letter) {
			v.writeln("Enter a single latin letter (a-z).")
			continue
		}
		return letter, true
	}
}

// ShowAttemptResult 本次猜测结果
func (v *View) ShowAttemptResult(out game.Outcome) {
	switch {
	case !out.IsNew:
		v.writeln("Letter %q was already used.", out.Letter)
	case out.Success:
		v.writeln("Letter %q is in the word!", out.Letter)
	default:
		v.writeln("Letter %q is not in the word.", out.Letter)
	}
	v.writeln("")
}

// ShowError 错误提示
func (v *View) ShowError(message string) {
	v.writeln("! %s", message)
}

func (v *View) board(masked string, errors, maxErrors int, guessed []string) {
	v.writeln(game.Gallows(errors))
	v.writeln("")
	v.writeln("Word: %s", masked)
	v.writeln("Errors: %d of %d", errors, maxErrors)
	used := "-"
	if len(guessed) > 0 {
		used = strings.Join(guessed, ", ")
	}
	v.writeln("Used letters: %s", used)
	v.writeln("")
}

// RenderGameState 当前局面
func (v *View) RenderGameState(snap game.Snapshot, attemptNo int) {
	v.clearScreen()
	v.writeln("=== Hangman ===")
	v.writeln("")
	v.board(snap.MaskedWord, snap.Errors, snap.MaxErrors, snap.GuessedLetters)
	v.writeln("Move #%d", attemptNo)
	v.writeln("")
}

// RenderFinal 终局画面
func (v *View) RenderFinal(state *game.State) {
	v.clearScreen()
	v.writeln("=== Game over ===")
	v.writeln("")
	v.writeln(game.Gallows(state.Errors()))
	v.writeln("")
	v.writeln("Secret word: %s", state.SecretWord())
	v.writeln("Errors: %d of %d", state.Errors(), state.MaxErrors())
	used := "-"
	if letters := state.GuessedLetters(); len(letters) > 0 {
		used = strings.Join(letters, ", ")
	}
	v.writeln("Used letters: %s", used)
	v.writeln("")

	switch state.Status() {
	case game.StatusWon:
		v.writeln("Congratulations, %s! You guessed the word.", state.PlayerName())
	case game.StatusLost:
		v.writeln("Sorry, %s, you lost.", state.PlayerName())
	default:
		v.writeln("%s, the game was not finished.", state.PlayerName())
	}
	v.writeln("")
}

// resultLabel 结果的展示文字
func resultLabel(result string) string {
	switch result {
	case models.ResultWin:
		return "won"
	case models.ResultLose:
		return "lost"
	default:
		return "in progress"
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// RenderGamesList 对局列表
func (v *View) RenderGamesList(games []models.Game) {
	if len(games) == 0 {
		v.writeln("No saved games yet.")
		return
	}

	v.writeln("Saved games:")
	v.writeln("")
	v.writeln(" ID | Date                 | Player      | Word    | Result")
	v.writeln("----+----------------------+-------------+---------+------------")
	for _, g := range games {
		v.writeln("%3d | %-20s | %-11s | %-7s | %s",
			g.ID,
			g.PlayedAt.Format("2006-01-02 15:04:05"),
			truncate(g.PlayerName, 11),
			truncate(g.SecretWord, 7),
			resultLabel(g.Result),
		)
	}
	v.writeln("")
}

// RenderReplayHeader 回放开头
func (v *View) RenderReplayHeader(g *models.Game) {
	v.clearScreen()
	v.writeln("=== Replay ===")
	v.writeln("")
	v.writeln("ID:     %d", g.ID)
	v.writeln("Date:   %s", g.PlayedAt.Format("2006-01-02 15:04:05"))
	v.writeln("Player: %s", g.PlayerName)
	v.writeln("Word:   %s", g.SecretWord)
	v.writeln("Result: %s", resultLabel(g.Result))
	v.writeln("")
	v.WaitForEnter("Press Enter to start the replay...")
}

// RenderReplayStep 回放中的一步
func (v *View) RenderReplayStep(step game.ReplayStep, maxErrors int) {
	v.clearScreen()
	v.writeln("=== Replay ===")
	v.writeln("")
	v.board(step.MaskedWord, step.Errors, maxErrors, step.GuessedLetters)

	verdict := "miss"
	if step.Success {
		verdict = "hit"
	}
	if step.Repeated {
		verdict += ", repeated"
	}
	v.writeln("Move #%d: letter %q, %s", step.AttemptNo, step.Letter, verdict)
	v.writeln("")
	v.WaitForEnter("Press Enter for the next move...")
}

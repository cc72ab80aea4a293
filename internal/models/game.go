package models

import (
	"time"
)

// 对局结果
const (
	ResultInProgress = "in-progress"
	ResultWin        = "win"
	ResultLose       = "lose"
)

// Word 词库表
type Word struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Word string `gorm:"size:32;not null;uniqueIndex" json:"word"`
}

// TableName 指定表名
func (Word) TableName() string {
	return "words"
}

// Game 对局表
type Game struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlayerName string    `gorm:"size:100;not null" json:"playerName"`
	SecretWord string    `gorm:"size:32;not null" json:"secretWord"`
	PlayedAt   time.Time `gorm:"not null;index" json:"playedAt"`
	Result     string    `gorm:"size:20;not null;default:in-progress" json:"result"` // in-progress, win, lose

	// 关联
	Attempts []Attempt `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Game) TableName() string {
	return "games"
}

// IsFinished 是否已有最终结果
func (g *Game) IsFinished() bool {
	return g.Result == ResultWin || g.Result == ResultLose
}

// Attempt 猜测记录表，只追加
type Attempt struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	GameID    uint   `gorm:"not null;index:idx_attempts_game_no,priority:1" json:"-"`
	AttemptNo int    `gorm:"not null;index:idx_attempts_game_no,priority:2" json:"attemptNo"`
	Letter    string `gorm:"size:1;not null" json:"letter"`
	Success   bool   `gorm:"not null" json:"success"`
}

// TableName 指定表名
func (Attempt) TableName() string {
	return "attempts"
}

// GameDetail 对局详情（对局 + 按序号排列的猜测）
type GameDetail struct {
	Game     Game      `json:"game"`
	Attempts []Attempt `json:"attempts"`
}

// AllModels 需要迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&Word{},
		&Game{},
		&Attempt{},
	}
}

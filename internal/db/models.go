package db

import "time"

// User maps polyglot.users.
type User struct {
	UserID             int64      `gorm:"column:user_id;primaryKey;autoIncrement"`
	UserUUID           string     `gorm:"column:user_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	Username           string     `gorm:"column:username;type:text;not null;uniqueIndex:users_username_key"`
	PasswordHash       string     `gorm:"column:password_hash;type:text;not null"`
	MustChangePassword bool       `gorm:"column:must_change_password;not null;default:false"`
	CreatedAt          time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	LastLoginAt        *time.Time `gorm:"column:last_login_at;type:timestamptz"`
}

func (User) TableName() string { return "polyglot.users" }

// Session maps polyglot.sessions.
type Session struct {
	SessionID  string    `gorm:"column:session_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     int64     `gorm:"column:user_id;not null;index:sessions_user_id_idx"`
	ExpiresAt  time.Time `gorm:"column:expires_at;type:timestamptz;not null;index:sessions_expires_at_idx"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	LastSeenAt time.Time `gorm:"column:last_seen_at;type:timestamptz;not null;default:now()"`
	User       User      `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string { return "polyglot.sessions" }

// UserSettings maps polyglot.user_settings.
type UserSettings struct {
	UserID         int64     `gorm:"column:user_id;primaryKey"`
	SourceLanguage string    `gorm:"column:source_language;type:text;not null;default:en"`
	TargetLanguage string    `gorm:"column:target_language;type:text;not null;default:es"`
	SpeakResults   bool      `gorm:"column:speak_results;not null;default:false"`
	UpdatedAt      time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
	User           User      `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE"`
}

func (UserSettings) TableName() string { return "polyglot.user_settings" }

func autoMigrateModels() []any {
	return []any{
		&User{},
		&Session{},
		&UserSettings{},
	}
}

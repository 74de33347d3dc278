// Package i18n is the message-table mechanism the original implementation
// describes in include/i18n.h: detect LANG/LC_ALL/LC_MESSAGES, pick
// English or Chinese, and resolve message ids to localized strings.
// spec.md §6 keeps only the detection rule; this package keeps the full
// table since the original ships one and nothing in spec.md's Non-goals
// excludes it.
package i18n

import (
	"os"
	"strings"
)

type Lang int

const (
	English Lang = iota
	Chinese
)

// MsgID enumerates every translatable string, grouped as the original's
// message_id_t enum groups them (help text, errors, session management,
// status bar, window names).
type MsgID int

const (
	HelpTitle MsgID = iota
	HelpUsage
	HelpOptions
	HelpOptList
	HelpOptAttach
	HelpOptKill
	HelpOptHelp
	HelpKeybindings
	HelpKeyDetach
	HelpKeySplit
	HelpKeyNext
	HelpKeyScrollUp
	HelpKeyScrollDown

	ErrMkdir
	ErrForkExec
	ErrOpenPTY
	ErrProtocolVersion

	SessionFormat
	NoSessions
	SessionKilled
	SessionNotFound
	AttachFailed
	NestedWarning

	StatusHistory

	WindowNew
	WindowAttached
)

var table = map[MsgID][2]string{
	HelpTitle:          {"muxkit - terminal multiplexer", "muxkit - 终端复用器"},
	HelpUsage:          {"Usage: muxkit [options]", "用法: muxkit [选项]"},
	HelpOptions:        {"Options:", "选项:"},
	HelpOptList:        {"-l, -L          list sessions", "-l, -L          列出会话"},
	HelpOptAttach:      {"-s, -S ID       attach to session ID", "-s, -S ID       附加到会话 ID"},
	HelpOptKill:        {"-k, -K ID       kill session ID", "-k, -K ID       终止会话 ID"},
	HelpOptHelp:        {"-h, --help      show this help", "-h, --help      显示帮助"},
	HelpKeybindings:    {"Key bindings (prefix Ctrl-b):", "按键绑定 (前缀 Ctrl-b):"},
	HelpKeyDetach:      {"d               detach", "d               分离"},
	HelpKeySplit:       {"%%               split pane", "%%               分割窗格"},
	HelpKeyNext:        {"o               next pane", "o               下一个窗格"},
	HelpKeyScrollUp:    {"[               scroll up", "[               向上滚动"},
	HelpKeyScrollDown:  {"]               scroll down", "]               向下滚动"},
	ErrMkdir:           {"failed to create socket directory", "无法创建套接字目录"},
	ErrForkExec:        {"failed to start shell", "无法启动 shell"},
	ErrOpenPTY:         {"failed to open pty", "无法打开伪终端"},
	ErrProtocolVersion: {"protocol version mismatch", "协议版本不匹配"},
	SessionFormat:      {"%d: %d pane(s)", "%d: %d 个窗格"},
	NoSessions:         {"no sessions", "没有会话"},
	SessionKilled:      {"session killed", "会话已终止"},
	SessionNotFound:    {"session not found", "未找到会话"},
	AttachFailed:       {"attach failed", "附加失败"},
	NestedWarning:      {"warning: muxkit is already running inside this session", "警告: muxkit 已在此会话中运行"},
	StatusHistory:      {"[scrolling]", "[历史]"},
	WindowNew:          {"new", "新建"},
	WindowAttached:     {"attached", "已附加"},
}

// Detect implements spec.md §6's rule: LANG/LC_ALL/LC_MESSAGES starting
// with "zh" selects Chinese, anything else (including unset) is English.
func Detect() Lang {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			if strings.HasPrefix(strings.ToLower(v), "zh") {
				return Chinese
			}
			return English
		}
	}
	return English
}

// Catalog resolves message ids for one fixed language.
type Catalog struct {
	lang Lang
}

// New returns a Catalog for lang.
func New(lang Lang) *Catalog { return &Catalog{lang: lang} }

// T resolves a message id to this catalog's language.
func (c *Catalog) T(id MsgID) string {
	pair, ok := table[id]
	if !ok {
		return ""
	}
	return pair[c.lang]
}

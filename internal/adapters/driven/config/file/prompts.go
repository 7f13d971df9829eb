package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptQASystem: `你是一個專業的財務稅法顧問，負責回答用戶的財務和稅法問題。

請遵循以下指導原則：
1. 使用繁體中文回答所有問題，即使用戶使用簡體中文提問。
2. 首先仔細分析用戶問題的真正意圖和語義，理解用戶真正想知道的是什麼。
3. 基於提供的文檔內容回答問題，但不要僅僅複製文檔中的內容。
4. 如果文檔中的信息不完整，請使用你的專業知識補充回答，但明確區分哪些是來自文檔的信息，哪些是你的專業補充。
5. 如果文檔中完全沒有相關信息，請誠實地說明，並提供你的專業建議或引導用戶尋找更多資源。
6. 回答應該專業、準確、易於理解，並引用相關的法規或文檔來源。
7. 對於會計、稅務等專業問題，請提供系統性的回答，而不僅僅是列出文檔中提到的片段。

記住：你的目標是真正解決用戶的問題，而不僅僅是檢索和呈現文檔內容。`,

	driven.PromptQAContext: `文檔內容: %s

請記住以下步驟來回答用戶的問題：
1. 仔細分析用戶問題的真正意圖和語義
2. 思考這個問題在財務稅法領域的專業背景和重要性
3. 從提供的文檔中找出相關信息
4. 組織一個結構化、系統性的回答，而不僅僅是列出文檔片段
5. 如有必要，補充專業知識以提供完整回答
6. 確保回答使用繁體中文，專業準確且易於理解`,

	driven.PromptCondenseQuestion: `Given the following conversation and a follow up question, rephrase the follow up question to be a standalone question, in its original language.
Return ONLY the standalone question, nothing else.

Chat History:
%s
Follow Up Input: %s
Standalone question:`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.docqa/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, DefaultDirName, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// DefaultPrompt returns the embedded default for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Falls back to the embedded default if the file is missing or empty.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// No lock held during I/O.
	prompt, err := s.loadFromFile(name)
	if err != nil || prompt == "" {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		if err == nil {
			err = fmt.Errorf("prompt file is empty")
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Double-check so a concurrent load is not overwritten.
	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// Watch reloads prompts whenever a prompt file in the directory changes.
// It blocks until ctx is cancelled.
func (s *PromptStore) Watch(ctx context.Context) error {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.promptDir); err != nil {
		return fmt.Errorf("watch %s: %w", s.promptDir, err)
	}
	logger.Debug("watching prompts in %s", s.promptDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if name, changed := s.handleEvent(event); changed {
				logger.Info("prompt %s changed, reloading", name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// handleEvent drops the cached copy of the prompt an event refers to.
// Chmod events and non-prompt files are ignored.
func (s *PromptStore) handleEvent(event fsnotify.Event) (string, bool) {
	if filepath.Ext(event.Name) != promptExt {
		return "", false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	name := strings.TrimSuffix(filepath.Base(event.Name), promptExt)
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
	return name, true
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Existing files are user edits and are left alone.
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+promptExt)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+promptExt))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# docqa Prompts

This directory contains the prompts used to answer questions.

## Files

- ` + "`qa_system.txt`" + ` - Assistant instructions (tone, language, sourcing)
- ` + "`qa_context.txt`" + ` - Wraps the retrieved passages; one ` + "`%s`" + `
- ` + "`condense_question.txt`" + ` - Rewrites follow-ups; ` + "`%s`" + ` history, then ` + "`%s`" + ` question

## Customisation

Edit any file to change how answers are produced. Running chat sessions and
the MCP server pick up changes immediately. Delete a file to restore its default.
`
	return os.WriteFile(path, []byte(content), 0600)
}

// Package survey runs the question flow: it decides what to ask next,
// normalizes each answer into the result document and emits the
// finished document.
package survey

import (
	"encoding/json"
	"strings"
	"time"

	"surveyassistant/internal/model"
	"surveyassistant/internal/normalize"
	"surveyassistant/internal/pkg/logger"

	"github.com/google/uuid"
)

const logModule = "survey"

// Mode is the engine state. Exactly one mode is active at a time.
type Mode string

const (
	ModeMainCatalog           Mode = "main_catalog"
	ModeSubQuestionDrain      Mode = "sub_question_drain"
	ModeStructuredListCollect Mode = "structured_list_collect"
	ModeFinished              Mode = "finished"
)

const (
	morePrompt   = "Any more items? (yes/no)"
	anotherIntro = "Okay, let's add another item."
)

var terminationTokens = map[string]struct{}{
	"done":   {},
	"finish": {},
	"stop":   {},
}

// IsTermination reports whether text ends the survey early.
func IsTermination(text string) bool {
	_, ok := terminationTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// PendingSubQuestion is a queued follow-up about one list item.
type PendingSubQuestion struct {
	QuestionID string `json:"questionId"`
	ItemID     string `json:"itemId"`
	Label      string `json:"label"`
	Index      int    `json:"index"` // into the question's SubQuestions
}

// listSession collects structured list entries field by field.
type listSession struct {
	questionID   string
	current      model.StructuredItem
	fieldIndex   int
	collected    []model.StructuredItem
	awaitingMore bool
}

// Reply is the result of one Submit: either the next prompt or, once
// finished, the final document.
type Reply struct {
	Prompt   string          `json:"prompt,omitempty"`
	Done     bool            `json:"done"`
	Mode     Mode            `json:"mode"`
	Progress model.Progress  `json:"progress"`
	Document json.RawMessage `json:"document,omitempty"`
}

// Engine is a single-session, non-reentrant survey state machine.
type Engine struct {
	catalog []model.Question
	byID    map[string]int

	mode    Mode
	index   int
	pending []PendingSubQuestion
	list    *listSession
	doc     *model.Document
	final   json.RawMessage
	prompt  string
	notice  string

	log   logger.ILogger
	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

func WithLogger(l logger.ILogger) Option {
	return func(e *Engine) { e.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine starts a survey at the first catalog entry.
func NewEngine(catalog []model.Question, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		byID:    make(map[string]int, len(catalog)),
		mode:    ModeMainCatalog,
		doc:     model.NewDocument(CountedQuestions(catalog)),
		log:     logger.NewNop(),
		now:     time.Now,
		newID: func() string {
			return "it_" + uuid.New().String()[:8]
		},
	}
	for i := range catalog {
		e.byID[catalog[i].ID] = i
	}
	for _, opt := range opts {
		opt(e)
	}
	e.settle()
	return e
}

// Prompt is the text currently awaiting an answer. It is empty once the
// survey is finished.
func (e *Engine) Prompt() string {
	return e.prompt
}

func (e *Engine) Mode() Mode {
	return e.mode
}

func (e *Engine) Progress() model.Progress {
	return e.doc.Meta.Progress
}

// Document returns a deep copy of the document as it stands.
func (e *Engine) Document() *model.Document {
	return e.doc.Clone()
}

// Pending returns a copy of the follow-up queue.
func (e *Engine) Pending() []PendingSubQuestion {
	return append([]PendingSubQuestion(nil), e.pending...)
}

// Result returns the serialized final document once finished.
func (e *Engine) Result() (json.RawMessage, bool) {
	if e.mode != ModeFinished {
		return nil, false
	}
	return append(json.RawMessage(nil), e.final...), true
}

// Current returns what Submit last returned: the pending prompt, or the
// final document once finished.
func (e *Engine) Current() Reply {
	return e.reply()
}

// Submit processes one answer and returns what to show next.
func (e *Engine) Submit(raw string) Reply {
	if e.mode == ModeFinished {
		return e.reply()
	}
	e.notice = ""
	value := strings.TrimSpace(raw)

	if IsTermination(value) {
		e.log.Info(logModule, "survey terminated by respondent", map[string]interface{}{"mode": string(e.mode), "index": e.index})
		e.finish()
		return e.reply()
	}

	switch e.mode {
	case ModeSubQuestionDrain:
		e.answerSubQuestion(value)
	case ModeStructuredListCollect:
		e.answerListField(value)
	default:
		e.answerMain(value)
	}
	e.settle()
	return e.reply()
}

func (e *Engine) reply() Reply {
	r := Reply{
		Mode:     e.mode,
		Progress: e.doc.Meta.Progress,
	}
	if e.mode == ModeFinished {
		r.Done = true
		r.Document = append(json.RawMessage(nil), e.final...)
		return r
	}
	r.Prompt = e.prompt
	return r
}

func (e *Engine) answerMain(value string) {
	q := &e.catalog[e.index]

	switch {
	case !q.Counted():
		// the introduction records nothing
	case q.Rule == model.RuleWeight:
		e.write(q, e.doc.SetInt(q.Field, normalize.Weight(value)))
	case q.Rule == model.RuleHeight:
		h := normalize.Height(value)
		e.write(q, e.doc.SetText(q.Field, h.Height))
		e.write(q, e.doc.SetInt(model.FieldHeightInchesTotal, h.InchesTotal))
	case q.Type == model.QuestionTypeNumber:
		e.write(q, e.doc.SetInt(q.Field, normalize.Number(value)))
	case q.Type == model.QuestionTypeEnumMulti:
		if e.answerEnumMulti(q, value) {
			return
		}
	case q.Type == model.QuestionTypeListFreeText:
		e.write(q, e.doc.SetStrings(q.Field, normalize.List(value)))
	case q.Type == model.QuestionTypeListStructured:
		if !normalize.IsSentinel(value) {
			e.list = &listSession{questionID: q.ID, current: model.StructuredItem{ID: e.newID()}}
			e.mode = ModeStructuredListCollect
			return
		}
		e.write(q, e.doc.SetStructured(q.Field, nil))
	default:
		e.write(q, e.doc.SetText(q.Field, normalize.Text(value)))
	}
	e.advance()
}

// answerEnumMulti writes the selections and queues follow-ups. It
// reports whether the engine switched to draining follow-ups.
func (e *Engine) answerEnumMulti(q *model.Question, value string) bool {
	switch q.Rule {
	case model.RuleCamFields:
		e.write(q, e.doc.SetStrings(q.Field, normalize.CamFields(value, q.Options)))
		return false
	case model.RuleWearables:
		e.write(q, e.doc.SetStrings(q.Field, normalize.Wearables(value, q.Options)))
		return false
	}

	picked := normalize.EnumMulti(value, q.Options, q.OtherLabel, q.NoneLabel)
	items := make([]model.Selection, len(picked))
	for i, p := range picked {
		items[i] = model.Selection{ID: e.newID(), Label: p.Label, OtherNote: p.OtherNote}
	}
	if err := e.doc.SetSelections(q.Field, items); err != nil {
		e.write(q, err)
		return false
	}

	for _, item := range items {
		if next := q.NextSubQuestion(item, 0); next >= 0 {
			e.pending = append(e.pending, PendingSubQuestion{
				QuestionID: q.ID,
				ItemID:     item.ID,
				Label:      item.Label,
				Index:      next,
			})
		}
	}
	if len(e.pending) == 0 {
		return false
	}
	e.mode = ModeSubQuestionDrain
	return true
}

func (e *Engine) answerSubQuestion(value string) {
	head := e.pending[0]
	q, sq, ok := e.lookupSubQuestion(head)
	if !ok {
		e.dropPending("sub-question lookup failed", head, nil)
		return
	}

	var err error
	if sq.Type == model.QuestionTypeNumber {
		err = e.doc.SetItemInt(q.Field, head.ItemID, sq.Field, normalize.FollowUpNumber(value))
	} else {
		err = e.doc.SetItemText(q.Field, head.ItemID, sq.Field, normalize.FollowUpText(value))
	}
	if err != nil {
		e.dropPending("follow-up write failed", head, err)
		return
	}

	item, err := e.doc.Selection(q.Field, head.ItemID)
	if err != nil {
		e.dropPending("follow-up item vanished", head, err)
		return
	}
	if next := q.NextSubQuestion(item, head.Index+1); next >= 0 {
		e.pending[0].Index = next
		return
	}
	e.pending = e.pending[1:]
}

func (e *Engine) answerListField(value string) {
	s := e.list
	q, ok := e.question(s.questionID)
	if !ok {
		e.log.Error(logModule, "structured list question missing", map[string]interface{}{"question": s.questionID})
		e.list = nil
		e.advance()
		return
	}

	if s.awaitingMore {
		if strings.EqualFold(value, "yes") {
			s.awaitingMore = false
			s.current = model.StructuredItem{ID: e.newID()}
			s.fieldIndex = 0
			e.notice = anotherIntro
			return
		}
		e.write(q, e.doc.SetStructured(q.Field, s.collected))
		e.list = nil
		e.advance()
		return
	}

	if s.fieldIndex >= len(q.SubQuestions) {
		e.log.Error(logModule, "structured list field out of range", map[string]interface{}{"question": q.ID, "index": s.fieldIndex})
		s.awaitingMore = true
		return
	}
	if err := s.current.Set(q.SubQuestions[s.fieldIndex].Field, value); err != nil {
		e.write(q, err)
	}
	s.fieldIndex++
	if s.fieldIndex == len(q.SubQuestions) {
		s.collected = append(s.collected, s.current)
		s.current = model.StructuredItem{}
		s.fieldIndex = 0
		s.awaitingMore = true
	}
}

// advance moves past the current catalog entry, counting it when it is
// not the introduction.
func (e *Engine) advance() {
	if e.index < len(e.catalog) && e.catalog[e.index].Counted() {
		e.doc.Meta.Progress.Answered++
	}
	e.index++
	e.mode = ModeMainCatalog
}

// settle resolves the state reached after an answer into the next
// prompt, dropping broken follow-ups and finishing when the catalog is
// exhausted.
func (e *Engine) settle() {
	for e.mode == ModeSubQuestionDrain {
		if len(e.pending) == 0 {
			e.advance()
			break
		}
		head := e.pending[0]
		if _, sq, ok := e.lookupSubQuestion(head); ok {
			e.prompt = substitute(sq.Text, head.Label)
			return
		}
		e.dropPending("sub-question lookup failed", head, nil)
	}

	if e.mode == ModeStructuredListCollect {
		q, ok := e.question(e.list.questionID)
		if ok && (e.list.awaitingMore || e.list.fieldIndex < len(q.SubQuestions)) {
			e.prompt = e.listPrompt(q)
			return
		}
		e.log.Error(logModule, "structured list has no fields", map[string]interface{}{"question": e.list.questionID})
		e.list = nil
		e.advance()
	}

	if e.mode == ModeMainCatalog {
		if e.index >= len(e.catalog) {
			e.finish()
			return
		}
		e.prompt = e.catalog[e.index].Text
	}
}

func (e *Engine) listPrompt(q *model.Question) string {
	if e.list.awaitingMore {
		return morePrompt
	}
	text := q.SubQuestions[e.list.fieldIndex].Text
	if e.notice != "" {
		return e.notice + "\n" + text
	}
	return text
}

// finish stamps the completion time and serializes the document once.
// Entries already collected for an open structured list are kept.
func (e *Engine) finish() {
	if e.list != nil {
		if q, ok := e.question(e.list.questionID); ok && len(e.list.collected) > 0 {
			e.write(q, e.doc.SetStructured(q.Field, e.list.collected))
		}
		e.list = nil
	}
	e.pending = nil

	completed := e.now().UTC()
	e.doc.Meta.CompletedAt = &completed

	data, err := json.MarshalIndent(e.doc, "", "  ")
	if err != nil {
		e.log.Error(logModule, "document serialization failed", map[string]interface{}{"error": err.Error()})
		data = []byte("{}")
	}
	e.final = data
	e.mode = ModeFinished
	e.prompt = ""
	e.log.Info(logModule, "survey finished", map[string]interface{}{
		"answered": e.doc.Meta.Progress.Answered,
		"total":    e.doc.Meta.Progress.TotalQuestions,
	})
}

func (e *Engine) question(id string) (*model.Question, bool) {
	i, ok := e.byID[id]
	if !ok {
		return nil, false
	}
	return &e.catalog[i], true
}

func (e *Engine) lookupSubQuestion(p PendingSubQuestion) (*model.Question, model.SubQuestion, bool) {
	q, ok := e.question(p.QuestionID)
	if !ok || p.Index < 0 || p.Index >= len(q.SubQuestions) {
		return nil, model.SubQuestion{}, false
	}
	return q, q.SubQuestions[p.Index], true
}

func (e *Engine) dropPending(reason string, p PendingSubQuestion, err error) {
	details := map[string]interface{}{
		"question": p.QuestionID,
		"item":     p.ItemID,
		"index":    p.Index,
	}
	if err != nil {
		details["error"] = err.Error()
	}
	e.log.Error(logModule, reason, details)
	if len(e.pending) > 0 {
		e.pending = e.pending[1:]
	}
}

func (e *Engine) write(q *model.Question, err error) {
	if err == nil {
		return
	}
	e.log.Error(logModule, "document write failed", map[string]interface{}{
		"question": q.ID,
		"field":    q.Field.Path(),
		"error":    err.Error(),
	})
}

func substitute(text, label string) string {
	if label == "" {
		return text
	}
	return strings.NewReplacer("{condition}", label, "{allergen}", label).Replace(text)
}

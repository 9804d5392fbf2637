package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/buybuddy-ai/buybuddy/internal/agents"
	"github.com/buybuddy-ai/buybuddy/internal/history"
	"github.com/buybuddy-ai/buybuddy/internal/models"
	"github.com/buybuddy-ai/buybuddy/internal/pricing"
	"github.com/buybuddy-ai/buybuddy/internal/session"
)

const (
	// pageSize is the number of products shown per turn. On negative
	// feedback twice as many are requested to survive exclusion filtering.
	pageSize = 10

	classifyTimeout  = 15 * time.Second
	extractTimeout   = 30 * time.Second
	searchTimeout    = 20 * time.Second
	summarizeTimeout = 20 * time.Second
)

const fallbackGreeting = "Hi! I'm BuyBuddy, your shopping assistant. Tell me what product you're looking for and I'll find it for you."

type Classifier interface {
	Classify(ctx context.Context, message string) (agents.Classification, error)
}

type Extractor interface {
	Extract(ctx context.Context, message string) (models.StructuredQuery, error)
}

type ProductSource interface {
	Search(ctx context.Context, query, location string, count int) ([]models.Product, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, in agents.SummaryInput) (string, error)
}

// Result is the terminal output of one workflow run. Exactly one of
// ConversationalResponse, Error, or a product result set is populated.
type Result struct {
	SessionID              string                  `json:"session_id"`
	Message                string                  `json:"message"`
	ConversationalResponse string                  `json:"conversational_response,omitempty"`
	StructuredQuery        *models.StructuredQuery `json:"structured_query,omitempty"`
	Products               []models.Product        `json:"products"`
	PriceComparison        *pricing.Comparison     `json:"price_comparison,omitempty"`
	ProductMessage         string                  `json:"product_message,omitempty"`
	Error                  string                  `json:"error,omitempty"`
}

type Engine struct {
	classifier Classifier
	extractor  Extractor
	source     ProductSource
	summarizer Summarizer
	sessions   session.Store
	recorder   history.Recorder
}

func NewEngine(classifier Classifier, extractor Extractor, source ProductSource, summarizer Summarizer, sessions session.Store, recorder history.Recorder) *Engine {
	return &Engine{
		classifier: classifier,
		extractor:  extractor,
		source:     source,
		summarizer: summarizer,
		sessions:   sessions,
		recorder:   recorder,
	}
}

// Run executes the workflow for one user message. Application-level
// failures land in Result.Error; the returned error is reserved for
// session-store breakage that prevents running at all.
func (e *Engine) Run(ctx context.Context, userMessage, sessionID string) (*Result, error) {
	st, err := e.initState(ctx, userMessage, sessionID)
	if err != nil {
		return nil, err
	}

	for step := StepConversationCheck; step != StepDone; step = Next(step, st) {
		e.exec(ctx, step, st)
	}

	return e.finish(ctx, st), nil
}

// initState resolves the session (creating one when the id is missing or
// expired) and seeds the state with its stored query and exclusion set.
func (e *Engine) initState(ctx context.Context, userMessage, sessionID string) (*State, error) {
	var sess *session.Session
	if sessionID != "" {
		s, err := e.sessions.Get(ctx, sessionID)
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("load session: %w", err)
		}
		sess = s
	}
	if sess == nil {
		id, err := e.sessions.Create(ctx)
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		sess = &session.Session{ID: id, ExcludedLinks: []string{}}
	}

	return &State{
		UserMessage:    userMessage,
		SessionID:      sess.ID,
		Query:          sess.LastStructuredQuery,
		QueryFromStore: sess.LastStructuredQuery != nil,
		ExcludedLinks:  sess.ExcludedLinks,
		Products:       []models.Product{},
	}, nil
}

func (e *Engine) exec(ctx context.Context, step Step, st *State) {
	switch step {
	case StepConversationCheck:
		e.checkConversation(ctx, st)
	case StepFeedbackCheck:
		st.IsNegativeFeedback = IsNegativeFeedback(st.UserMessage)
	case StepResolveQuery:
		e.resolveQuery(ctx, st)
	case StepResearch:
		e.research(ctx, st)
	case StepCompare:
		e.compare(st)
	case StepSummarize:
		e.summarize(ctx, st)
	}
}

func (e *Engine) checkConversation(ctx context.Context, st *State) {
	if IsLikelyProductSearch(st.UserMessage) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	cls, err := e.classifier.Classify(cctx, st.UserMessage)
	if err != nil {
		// fail open toward product search
		slog.Warn("classifier failed, assuming product search", "session_id", st.SessionID, "err", err)
		return
	}
	if cls.IsConversational {
		st.IsConversational = true
		st.ConversationalResponse = cls.Response
		if strings.TrimSpace(st.ConversationalResponse) == "" {
			st.ConversationalResponse = fallbackGreeting
		}
	}
}

func (e *Engine) resolveQuery(ctx context.Context, st *State) {
	if st.IsNegativeFeedback && st.QueryFromStore && st.Query != nil {
		// the user rejected prior results; re-run the stored query
		return
	}

	cctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	q, err := e.extractor.Extract(cctx, st.UserMessage)
	if err != nil {
		st.Err = fmt.Errorf("error understanding query: %w", err)
		return
	}
	st.Query = &q
	st.QueryFromStore = false
}

func (e *Engine) research(ctx context.Context, st *State) {
	count := pageSize
	if st.IsNegativeFeedback {
		count = 2 * pageSize
	}

	sctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	products, err := e.source.Search(sctx, buildSearchQuery(*st.Query), st.Query.Location, count)
	if err != nil {
		st.Err = fmt.Errorf("error researching products: %w", err)
		return
	}

	products = filterByPrice(products, *st.Query)

	excluded := make(map[string]struct{}, len(st.ExcludedLinks))
	for _, l := range st.ExcludedLinks {
		excluded[l] = struct{}{}
	}

	kept := make([]models.Product, 0, pageSize)
	for _, p := range products {
		if _, seen := excluded[p.Link]; seen {
			continue
		}
		kept = append(kept, p)
		if len(kept) == pageSize {
			break
		}
	}

	st.Products = kept
	for _, p := range kept {
		st.ShownLinks = append(st.ShownLinks, p.Link)
		st.ExcludedLinks = append(st.ExcludedLinks, p.Link)
	}
	// zero products after exclusion is not an error; later steps handle it
}

func (e *Engine) compare(st *State) {
	if len(st.Products) == 0 {
		st.Comparison = nil
		return
	}
	c := pricing.Compare(st.Products)
	st.Comparison = &c
}

func (e *Engine) summarize(ctx context.Context, st *State) {
	in := agents.SummaryInput{
		UserMessage: st.UserMessage,
		Query:       derefQuery(st.Query),
		Products:    st.Products,
		Comparison:  st.Comparison,
	}

	if len(st.Products) == 0 {
		st.ProductMessage = emptyResultsMessage(in)
		return
	}

	sctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	msg, err := e.summarizer.Summarize(sctx, in)
	if err != nil {
		slog.Warn("summarizer failed, using template", "session_id", st.SessionID, "err", err)
		msg = agents.FallbackMessage(in)
	}
	st.ProductMessage = msg
}

// finish turns the final state into a result and performs the single
// end-of-run side effects: session write-back and history recording.
func (e *Engine) finish(ctx context.Context, st *State) *Result {
	res := &Result{
		SessionID: st.SessionID,
		Message:   st.UserMessage,
		Products:  []models.Product{},
	}

	switch {
	case st.Err != nil:
		res.Error = st.Err.Error()
		res.StructuredQuery = st.Query
		// exclusion set untouched on error

	case st.IsConversational:
		res.ConversationalResponse = st.ConversationalResponse
		e.recorder.RecordConversation(ctx, st.SessionID, st.UserMessage, st.ConversationalResponse, nil)

	default:
		res.StructuredQuery = st.Query
		res.Products = st.Products
		res.PriceComparison = st.Comparison
		res.ProductMessage = st.ProductMessage

		if err := e.sessions.Update(ctx, st.SessionID, st.ShownLinks, st.Query); err != nil {
			slog.Error("session write-back failed", "session_id", st.SessionID, "err", err)
		}

		e.recorder.RecordConversation(ctx, st.SessionID, st.UserMessage, st.ProductMessage, st.Query)
		if len(st.Products) > 0 {
			queryText := st.UserMessage
			if st.Query != nil {
				queryText = st.Query.QueryText
			}
			e.recorder.RecordSearch(ctx, st.SessionID, queryText, st.Query, len(st.Products))
			e.recorder.CacheProducts(ctx, st.Products, queryText)
		}
	}

	return res
}

// filterByPrice drops products whose parsed price falls outside the query's
// bounds. Dollar prices are converted to euros at the fixed rate before the
// check. Products with unparseable prices are kept.
func filterByPrice(products []models.Product, q models.StructuredQuery) []models.Product {
	if q.MaxPrice == nil && q.MinPrice == nil {
		return products
	}

	kept := make([]models.Product, 0, len(products))
	for _, p := range products {
		v, ok := pricing.ParsePrice(p.Price)
		if !ok {
			kept = append(kept, p)
			continue
		}
		if strings.Contains(p.Price, "$") || strings.Contains(strings.ToLower(p.Price), "dollar") {
			v *= eurPerUSD
		}
		if q.MaxPrice != nil && v > *q.MaxPrice {
			continue
		}
		if q.MinPrice != nil && v < *q.MinPrice {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func derefQuery(q *models.StructuredQuery) models.StructuredQuery {
	if q == nil {
		return models.StructuredQuery{}
	}
	return *q
}

func emptyResultsMessage(in agents.SummaryInput) string {
	label := in.Query.ProductType
	if label == "" {
		label = "products"
	}
	return fmt.Sprintf("I couldn't find any new %s matching your request. Try rephrasing or loosening the price range.", label)
}

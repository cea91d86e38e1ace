package editor

import (
	"sync"

	"github.com/coderunr/editor/internal/catalogue"
	"github.com/coderunr/editor/internal/keys"
	"github.com/sirupsen/logrus"
)

// Options configures a mounted surface
type Options struct {
	Catalogue  *catalogue.Catalogue
	Executor   Executor
	Dispatcher *keys.Dispatcher
	Language   catalogue.LanguageID
	Logger     *logrus.Entry
}

// Surface is one mounted editor: selection state, execution controller and the
// run shortcut bound on a key dispatcher.
type Surface struct {
	mu         sync.Mutex
	cat        *catalogue.Catalogue
	selection  *Selection
	controller *Controller
	dispatcher *keys.Dispatcher
	binding    *keys.Binding
	logger     *logrus.Entry
	unmounted  bool

	stateObservers observers[State]
}

// Mount creates a surface and binds ctrl+enter on its dispatcher
func Mount(opts Options) *Surface {
	if opts.Catalogue == nil {
		opts.Catalogue = catalogue.Builtin()
	}
	if opts.Language == "" {
		opts.Language = catalogue.Default
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = keys.NewDispatcher()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Surface{
		cat:        opts.Catalogue,
		selection:  NewSelection(opts.Catalogue, opts.Language),
		controller: NewController(opts.Executor, opts.Logger),
		dispatcher: opts.Dispatcher,
		binding:    keys.Bind(opts.Dispatcher, keys.CtrlEnter),
		logger:     opts.Logger.WithField("component", "surface"),
	}
	s.rebind()

	s.logger.WithField("language", opts.Language).Debug("Editor mounted")
	return s
}

// rebind points the shortcut at a run of the current snapshot. Callers hold mu.
func (s *Surface) rebind() {
	snapshot := s.selection.Snapshot()
	s.binding.Rebind(func() {
		s.controller.Run(snapshot)
	})
}

func (s *Surface) mutate(fn func()) {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return
	}
	fn()
	s.rebind()
	state := s.selection.Snapshot()
	s.mu.Unlock()

	s.stateObservers.notify(state)
}

// SelectLanguage switches language and loads its snippet
func (s *Surface) SelectLanguage(id catalogue.LanguageID) {
	s.mutate(func() { s.selection.SelectLanguage(id) })
}

// SetSource replaces the source buffer
func (s *Surface) SetSource(text string) {
	s.mutate(func() { s.selection.SetSource(text) })
}

// SetStdin replaces the stdin buffer
func (s *Surface) SetStdin(text string) {
	s.mutate(func() { s.selection.SetStdin(text) })
}

// Run submits the current state, like pressing the run button
func (s *Surface) Run() <-chan struct{} {
	return s.controller.Run(s.selection.Snapshot())
}

// Submit is Run that also returns the sequence number of the submission
func (s *Surface) Submit() (uint64, <-chan struct{}) {
	return s.controller.Submit(s.selection.Snapshot())
}

// HandleKey forwards a keydown to the dispatcher. False means the view should
// apply the key's default behaviour.
func (s *Surface) HandleKey(e keys.Event) bool {
	return s.dispatcher.Dispatch(e)
}

// State returns the current editor state
func (s *Surface) State() State {
	return s.selection.Snapshot()
}

// View returns the current view
func (s *Surface) View() View {
	return s.controller.View()
}

// Catalogue returns the catalogue the surface was mounted with
func (s *Surface) Catalogue() *catalogue.Catalogue {
	return s.cat
}

// Controller exposes the execution controller
func (s *Surface) Controller() *Controller {
	return s.controller
}

// Subscribe registers fn for view transitions
func (s *Surface) Subscribe(fn func(View)) func() {
	return s.controller.Subscribe(fn)
}

// SubscribeState registers fn for editor state changes
func (s *Surface) SubscribeState(fn func(State)) func() {
	return s.stateObservers.subscribe(fn)
}

// Unmount releases the shortcut and cancels in-flight requests. Safe to call
// more than once.
func (s *Surface) Unmount() {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return
	}
	s.unmounted = true
	s.binding.Close()
	s.mu.Unlock()

	s.controller.Close()
	s.stateObservers.clear()
	s.logger.Debug("Editor unmounted")
}

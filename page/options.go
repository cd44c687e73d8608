package page

// Option configures a Page.
type Option func(*Page)

// WithoutInitialNotify suppresses the entry an observer normally
// delivers when it starts observing an element. Some environments do
// not report elements that are already visible at mount time; this
// reproduces them.
func WithoutInitialNotify() Option {
	return func(p *Page) {
		p.initialNotify = false
	}
}

package csvdoc

// Option configures a Writer.
type Option func(*options) error

type options struct {
	delim       rune
	crlf        bool
	alwaysQuote bool
}

func defaultOptions() options {
	return options{delim: defaultDelimiter, crlf: true}
}

func (o *options) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// WithDelimiter returns an Option that separates fields with d instead of
// a comma. The same characters a Reader rejects are rejected here.
func WithDelimiter(d rune) Option {
	return func(o *options) error {
		if err := validDelimiter(d); err != nil {
			return err
		}
		o.delim = d
		return nil
	}
}

// WithCRLF returns an Option choosing the record terminator: "\r\n" when
// crlf is true, which is the default, or "\n".
func WithCRLF(crlf bool) Option {
	return func(o *options) error {
		o.crlf = crlf
		return nil
	}
}

// WithAlwaysQuote returns an Option that quotes every field, not only those
// containing the delimiter, a double quote or a line terminator.
func WithAlwaysQuote() Option {
	return func(o *options) error {
		o.alwaysQuote = true
		return nil
	}
}

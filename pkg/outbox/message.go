package outbox

// Message is a transport-neutral record handed to a broker. Key carries the
// aggregate id so brokers that partition or order by key keep one order's
// events together.
type Message struct {
	Topic      string
	Key        string
	Data       []byte
	Attributes map[string]string
}

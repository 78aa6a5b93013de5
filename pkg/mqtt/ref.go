package mqtt

import "strings"

// DeviceRef identifies a receiver on the broker.
type DeviceRef struct {
	// Type is the device type, "alpharx" by default.
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r DeviceRef) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates DeviceRef is valid.
func (r DeviceRef) IsValid() bool {
	return r.Type != "" && r.ID != "" &&
		!strings.ContainsAny(r.Type, "/+#") && !strings.ContainsAny(r.ID, "/+#")
}

// DeviceMeta is published retained on the meta topic.
type DeviceMeta struct {
	Description string            `json:"description,omitempty"`
	Backend     string            `json:"backend,omitempty"`
	Pins        string            `json:"pins,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Topic names relative to the device.
const (
	TopicMeta = "meta"
	TopicMsg  = "msg"
	TopicCmd  = "cmd"
)

// Topic returns the topic of the device.
func (r DeviceRef) Topic(name string) string {
	return r.Name() + "/" + name
}

// ParseTopic splits a <type>/<id>/<name> topic.
func ParseTopic(topic string) (ref DeviceRef, name string, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 {
		return
	}
	ref = DeviceRef{Type: items[0], ID: items[1]}
	return ref, items[2], ref.IsValid() && items[2] != ""
}

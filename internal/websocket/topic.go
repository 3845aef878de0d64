package websocket

import (
	"fmt"
	"strings"
)

// ChildrenTopic carries changes to a parent's child documents.
const ChildrenTopic = "children"

func ChoresTopic(childID string) string { return "children/" + childID + "/chores" }

func TasksTopic(childID string) string { return "children/" + childID + "/tasks" }

// ParseTopic validates a topic and returns the child it belongs to, which is
// empty for ChildrenTopic.
func ParseTopic(topic string) (childID string, err error) {
	if topic == ChildrenTopic {
		return "", nil
	}
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "children" || parts[1] == "" {
		return "", fmt.Errorf("invalid topic: %q", topic)
	}
	switch parts[2] {
	case "chores", "tasks":
		return parts[1], nil
	}
	return "", fmt.Errorf("invalid topic: %q", topic)
}

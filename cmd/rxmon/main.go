package main

import (
	"flag"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/robotalks/alpharx/pkg/alpharx"
	"github.com/robotalks/alpharx/pkg/mqtt"
	"github.com/robotalks/alpharx/pkg/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/alpharx/"
)

func init() {
	if val := os.Getenv("ALPHARX_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func describe(msg msgs.Message) string {
	switch m := msg.(type) {
	case *msgs.PacketEvent:
		return alpharx.Result(m.Result).String() + " " + alpharx.Packet{byte(m.Label), byte(m.Value)}.String()
	case *msgs.StatusEvent:
		return alpharx.StatusWord(m.Word).String()
	}
	return msg.String()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
			if len(payload) == 0 {
				log.Printf("%s: gone", topic)
				return
			}
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		log.Printf("%s: #%d [%s] %s", topic, typed.Sequence,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), describe(msg))
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}

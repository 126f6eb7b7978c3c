// 显示端：通过websocket向浏览器推送路网布局与每步仿真状态
package display

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tsinghua-fib-lab/gridsim-oss/task"
)

const (
	TypeLayout = "layout" // 连接建立后发送一次的静态布局
	TypeFrame  = "frame"  // 每步状态

	sendBuffer = 64
)

// message 推送给客户端的消息
type message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writer() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debugf("websocket write error: %v", err)
			c.conn.Close()
			// 排空，等待Hub关闭send
			for range c.send {
			}
			return
		}
	}
	c.conn.Close()
}

// Hub 显示端连接管理
// 功能：每every步把一帧状态广播给所有已连接的客户端
// 说明：Publish在仿真主循环中调用，不阻塞；跟不上的客户端直接断开
type Hub struct {
	layout []byte
	every  int32

	upgrader websocket.Upgrader

	mtx     sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub 创建Hub
// 参数：layout-静态布局，every-发布间隔步数（小于1时视为1）
func NewHub(layout *task.Layout, every int32) (*Hub, error) {
	b, err := json.Marshal(message{Type: TypeLayout, Payload: layout})
	if err != nil {
		return nil, err
	}
	if every < 1 {
		every = 1
	}
	return &Hub{
		layout: b,
		every:  every,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}, nil
}

// Len 当前连接数
func (h *Hub) Len() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return len(h.clients)
}

// ServeHTTP 升级为websocket连接，先发送布局，之后接收广播
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("failed to upgrade connection: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- h.layout

	h.mtx.Lock()
	if h.closed {
		h.mtx.Unlock()
		close(c.send)
		c.writer()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mtx.Unlock()
	log.Infof("display client %v connected, total %d", conn.RemoteAddr(), n)

	go c.writer()
	go h.reader(c)
}

// reader 只用于发现连接关闭
func (h *Hub) reader(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("websocket read error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		log.Infof("display client %v disconnected, remaining %d", c.conn.RemoteAddr(), len(h.clients))
	}
}

// Publish 广播一帧
func (h *Hub) Publish(frame *task.Frame) {
	if frame.Report.Step%h.every != 0 && len(frame.Report.Checkpoints) == 0 {
		return
	}
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if len(h.clients) == 0 {
		return
	}
	b, err := json.Marshal(message{Type: TypeFrame, Payload: frame})
	if err != nil {
		log.Errorf("failed to marshal frame: %v", err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			log.Warnf("display client %v too slow, dropped", c.conn.RemoteAddr())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Close 断开所有连接
func (h *Hub) Close() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

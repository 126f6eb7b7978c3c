package junction

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"git.fiblab.net/sim/syncer/v3"
	"google.golang.org/protobuf/proto"
)

// Register 将Junction管理器注册到sidecar
// 功能：注册信号灯服务处理器，只提供读取接口
// 说明：信控由控制器自身驱动，写入类接口保持未实现
func (m *JunctionManager) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		mapv2connect.TrafficLightServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return mapv2connect.NewTrafficLightServiceHandler(m, opts...)
		},
	)
}

// GetTrafficLight RPC接口：获取指定路口的信号灯状态
// 功能：返回固定配时程序、当前相位索引和剩余时间（秒）
// 参数：ctx-上下文，in-包含路口ID的请求
// 返回：信号灯状态响应，路口不存在时返回InvalidArgument错误
func (m *JunctionManager) GetTrafficLight(
	ctx context.Context, in *connect.Request[mapv2.GetTrafficLightRequest],
) (*connect.Response[mapv2.GetTrafficLightResponse], error) {
	req := in.Msg
	program, ok := m.programs[req.JunctionId]
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("junction id does not exist"))
	}
	m.snapshotMtx.RLock()
	phase, remaining := m.snapshotPhase, m.snapshotRemaining
	m.snapshotMtx.RUnlock()
	return connect.NewResponse(&mapv2.GetTrafficLightResponse{
		TrafficLight:  proto.Clone(program).(*mapv2.TrafficLight),
		PhaseIndex:    int32(phase),
		TimeRemaining: float64(remaining) * m.ctx.RuntimeConfig().DT,
	}), nil
}

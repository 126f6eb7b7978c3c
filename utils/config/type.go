package config

// Grid 路网网格配置
// 功能：定义N×N网格、道路带间距与宽度以及单元格的长度
// 说明：道路带从偏移road_width处开始，每隔spacing格重复一次
type Grid struct {
	Size      int     `yaml:"size"`       // 网格边长（格）
	Spacing   int     `yaml:"spacing"`    // 道路带间距（格）
	RoadWidth int     `yaml:"road_width"` // 道路带宽度（格），同时也是路口footprint边长
	CellSize  float64 `yaml:"cell_size"`  // 单元格边长（长度单位）
}

// Bounds 仿真区域范围（长度单位），车辆离开该范围即被移除
type Bounds struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ControlStep 指定模拟器模拟步数范围的配置项
type ControlStep struct {
	Start int32 `yaml:"start"` // 开始步数
	Total int32 `yaml:"total"` // 总步数，0表示一直运行直到收到停止信号
}

// Control 模拟器控制配置
type Control struct {
	Step     ControlStep `yaml:"step"`
	TickRate float64     `yaml:"tick_rate"` // 每秒步数
}

// Signal 固定配时信号灯配置（单位：步）
type Signal struct {
	GreenTicks     int32 `yaml:"green_ticks"`     // 绿灯时长
	ClearanceTicks int32 `yaml:"clearance_ticks"` // 全红清空时长
}

// Vehicle 车辆配置
type Vehicle struct {
	Speed        float64   `yaml:"speed"`         // 每步移动距离（长度单位）
	SafeDistance float64   `yaml:"safe_distance"` // 安全跟车距离（长度单位）
	ClassWeights []float64 `yaml:"class_weights"` // 车辆类别权重，下标对应entity.VehicleClass
}

// Spawn 车辆生成配置
type Spawn struct {
	Probability float64 `yaml:"probability"` // 每步尝试生成的概率
	Cap         int     `yaml:"cap"`         // 同时在网车辆上限
	Seed        uint64  `yaml:"seed"`        // 随机数种子
}

// Metrics 通过量统计配置
type Metrics struct {
	MinTravelCells int       `yaml:"min_travel_cells"` // 计入通过量的最小曼哈顿行驶距离（格）
	Checkpoints    []float64 `yaml:"checkpoints"`      // 采样时刻（秒）
}

// Output 输出到MongoDB的配置项，URI为空则不输出
type Output struct {
	URI string `yaml:"uri"` // MongoDB连接字符串
	DB  string `yaml:"db"`  // 数据库名
	Col string `yaml:"col"` // 集合名
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含路网、控制、信控、车辆、生成、统计、输出等所有配置项
type Config struct {
	Grid    Grid    `yaml:"grid"`
	Bounds  Bounds  `yaml:"bounds"`
	Control Control `yaml:"control"`
	Signal  Signal  `yaml:"signal"`
	Vehicle Vehicle `yaml:"vehicle"`
	Spawn   Spawn   `yaml:"spawn"`
	Metrics Metrics `yaml:"metrics"`
	Output  Output  `yaml:"output,omitempty"`
}

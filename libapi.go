package schemaflow

import (
	runtimepkg "github.com/pipestream-ai/schemaflow/internal/runtime"
	bindingspkg "github.com/pipestream-ai/schemaflow/internal/runtime/bindings"
	classifypkg "github.com/pipestream-ai/schemaflow/internal/runtime/classify"
	configpkg "github.com/pipestream-ai/schemaflow/internal/runtime/config"
	devservicepkg "github.com/pipestream-ai/schemaflow/internal/runtime/devservice"
	errspkg "github.com/pipestream-ai/schemaflow/internal/runtime/errors"
	idspkg "github.com/pipestream-ai/schemaflow/internal/runtime/ids"
	jsoncodec "github.com/pipestream-ai/schemaflow/internal/runtime/jsoncodec"
	loggingpkg "github.com/pipestream-ai/schemaflow/internal/runtime/logging"
	metricspkg "github.com/pipestream-ai/schemaflow/internal/runtime/metrics"
	overlaypkg "github.com/pipestream-ai/schemaflow/internal/runtime/overlay"
	propertiespkg "github.com/pipestream-ai/schemaflow/internal/runtime/properties"
	symtabpkg "github.com/pipestream-ai/schemaflow/internal/runtime/symtab"
)

type (
	Config              = configpkg.Config
	DevServicesConfig   = configpkg.DevServicesConfig
	Service             = runtimepkg.Service
	ServiceDependencies = runtimepkg.ServiceDependencies
	Result              = runtimepkg.Result

	// Symbol index
	TypeRef   = symtabpkg.TypeRef
	ClassInfo = symtabpkg.ClassInfo
	Index     = symtabpkg.Index
	Table     = symtabpkg.Table

	// Payload classification
	Ruleset    = classifypkg.Ruleset
	Classifier = classifypkg.Classifier

	// Channel bindings
	Annotation   = bindingspkg.Annotation
	Method       = bindingspkg.Method
	Field        = bindingspkg.Field
	Param        = bindingspkg.Param
	Declarations = bindingspkg.Declarations
	ChannelSet   = bindingspkg.ChannelSet
	Scanner      = bindingspkg.Scanner

	// Configuration layers
	PropertySource = propertiespkg.Source
	Resolver       = propertiespkg.Resolver
	MapSource      = propertiespkg.MapSource
	EnvSource      = propertiespkg.EnvSource
	Overlay        = overlaypkg.Overlay

	// Dev services
	DevServiceSnapshot = devservicepkg.Snapshot
	DevServiceManager  = devservicepkg.Manager
	DevServiceOutcome  = devservicepkg.Outcome
	ContainerRuntime   = devservicepkg.ContainerRuntime
	ContainerSpec      = devservicepkg.ContainerSpec
	StartedContainer   = devservicepkg.StartedContainer
	EndpointConfig     = devservicepkg.EndpointConfig
	DockerRuntime      = devservicepkg.DockerRuntime
	ReadyCheck         = devservicepkg.ReadyCheck

	Metrics = metricspkg.Collectors

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	ConfigValidationError = errspkg.ConfigValidationError
)

var (
	NewService     = runtimepkg.NewService
	ValidateConfig = configpkg.ValidateConfig

	// Symbol index
	NewTable         = symtabpkg.NewTable
	ClassRef         = symtabpkg.ClassRef
	ParameterizedRef = symtabpkg.ParameterizedRef

	// Payload classification
	NewClassifier     = classifypkg.New
	FirstTypeArgument = classifypkg.FirstTypeArgument

	// Channel bindings
	NewChannelSet   = bindingspkg.NewChannelSet
	NewScanner      = bindingspkg.NewScanner
	DefaultBindings = bindingspkg.DefaultBindings

	// Configuration layers
	NewResolver          = propertiespkg.NewResolver
	NewMapSource         = propertiespkg.NewMapSource
	NewEnvSource         = propertiespkg.NewEnvSource
	LoadApplicationFile  = propertiespkg.LoadApplicationFile
	ParseApplicationYAML = propertiespkg.ParseApplicationYAML
	NewOverlay           = overlaypkg.New
	IncomingKey          = overlaypkg.IncomingKey
	OutgoingKey          = overlaypkg.OutgoingKey
	ConnectorKey         = overlaypkg.ConnectorKey
	RegistryURLKey       = overlaypkg.RegistryURLKey

	// Dev services
	NewDevServiceManager = devservicepkg.NewManager
	NewDockerRuntime     = devservicepkg.NewDockerRuntime
	WithReadyCheck       = devservicepkg.WithReadyCheck
	WithExitHook         = devservicepkg.WithExitHook
	WithConnector        = devservicepkg.WithConnector

	NewMetrics = metricspkg.New

	Marshal       = jsoncodec.Marshal
	MarshalIndent = jsoncodec.MarshalIndent
	Unmarshal     = jsoncodec.Unmarshal
	Encode        = jsoncodec.Encode
	Decode        = jsoncodec.Decode

	ErrConfigRequired       = errspkg.ErrConfigRequired
	ErrLoggerRequired       = errspkg.ErrLoggerRequired
	ErrIndexRequired        = errspkg.ErrIndexRequired
	ErrDeclarationsRequired = errspkg.ErrDeclarationsRequired
	ErrResolverRequired     = errspkg.ErrResolverRequired
	ErrPublisherRequired    = errspkg.ErrPublisherRequired
	ErrChannelRequired      = errspkg.ErrChannelRequired
	ErrPayloadRequired      = errspkg.ErrPayloadRequired

	NewConfigValidationError = errspkg.NewConfigValidationError

	NewSlogServiceLogger      = loggingpkg.NewSlogServiceLogger
	NewWatermillServiceLogger = loggingpkg.NewWatermillServiceLogger
	NewNopServiceLogger       = loggingpkg.NewNopServiceLogger
	NewWatermillAdapter       = loggingpkg.NewWatermillAdapter

	CreateULID = idspkg.CreateULID
)

// Binding annotation names.
const (
	AnnIncoming      = bindingspkg.AnnIncoming
	AnnOutgoing      = bindingspkg.AnnOutgoing
	AnnChannel       = bindingspkg.AnnChannel
	AnnProtoIncoming = bindingspkg.AnnProtoIncoming
	AnnProtoOutgoing = bindingspkg.AnnProtoOutgoing
	AnnProtoChannel  = bindingspkg.AnnProtoChannel
)

// Synthesized channel setting values.
const (
	DefaultConnector         = overlaypkg.DefaultConnector
	KeySerde                 = overlaypkg.KeySerde
	ValueSerde               = overlaypkg.ValueSerde
	ArtifactResolverStrategy = overlaypkg.ArtifactResolverStrategy
	OffsetResetEarliest      = overlaypkg.OffsetResetEarliest
)

// Property tier ordinals, highest wins.
const (
	OrdinalEnvironment = propertiespkg.OrdinalEnvironment
	OrdinalApplication = propertiespkg.OrdinalApplication
	OrdinalOverlay     = propertiespkg.OrdinalOverlay
	OrdinalDevService  = propertiespkg.OrdinalDevService
	OrdinalDefaults    = propertiespkg.OrdinalDefaults
)

// Classifier defaults.
const (
	DefaultMarker   = classifypkg.DefaultMarker
	DefaultBaseImpl = classifypkg.DefaultBaseImpl
	UniversalRoot   = symtabpkg.UniversalRoot
)

// Dev service defaults.
const (
	DevServiceDefaultImage = devservicepkg.DefaultImage
	DevServiceDefaultName  = devservicepkg.DefaultServiceName
	DevServiceLabel        = devservicepkg.ServiceLabel

	DevServiceSkipped = devservicepkg.OutcomeSkipped
	DevServiceStarted = devservicepkg.OutcomeStarted
	DevServiceReused  = devservicepkg.OutcomeReused
	DevServiceAdopted = devservicepkg.OutcomeAdopted
)

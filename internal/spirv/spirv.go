// Package spirv lowers a checked program to a SPIR-V binary module.
package spirv

import "fmt"

const (
	MagicNumber uint32 = 0x07230203
	// GeneratorID is written into the header; the high half is the tool
	// id, zero for unregistered tools.
	GeneratorID uint32 = 0x00000001
	// MaxBound is the universal limit on result ids.
	MaxBound uint32 = 0x3FFFFF
)

// Op is an instruction opcode.
type Op uint16

const (
	OpNop                    Op = 0
	OpSource                 Op = 3
	OpName                   Op = 5
	OpMemberName             Op = 6
	OpExtInstImport          Op = 11
	OpExtInst                Op = 12
	OpMemoryModel            Op = 14
	OpEntryPoint             Op = 15
	OpExecutionMode          Op = 16
	OpCapability             Op = 17
	OpTypeVoid               Op = 19
	OpTypeBool               Op = 20
	OpTypeInt                Op = 21
	OpTypeFloat              Op = 22
	OpTypeVector             Op = 23
	OpTypeMatrix             Op = 24
	OpTypeImage              Op = 25
	OpTypeSampler            Op = 26
	OpTypeSampledImage       Op = 27
	OpTypeArray              Op = 28
	OpTypeRuntimeArray       Op = 29
	OpTypeStruct             Op = 30
	OpTypePointer            Op = 32
	OpTypeFunction           Op = 33
	OpConstantTrue           Op = 41
	OpConstantFalse          Op = 42
	OpConstant               Op = 43
	OpConstantComposite      Op = 44
	OpFunction               Op = 54
	OpFunctionParameter      Op = 55
	OpFunctionEnd            Op = 56
	OpFunctionCall           Op = 57
	OpVariable               Op = 59
	OpLoad                   Op = 61
	OpStore                  Op = 62
	OpAccessChain            Op = 65
	OpDecorate               Op = 71
	OpMemberDecorate         Op = 72
	OpVectorExtractDynamic   Op = 77
	OpVectorShuffle          Op = 79
	OpCompositeConstruct     Op = 80
	OpCompositeExtract       Op = 81
	OpCompositeInsert        Op = 82
	OpTranspose              Op = 84
	OpSampledImage           Op = 86
	OpImageSampleImplicitLod Op = 87
	OpImageSampleExplicitLod Op = 88
	OpImageSampleDrefImplLod Op = 89
	OpImageSampleDrefExplLod Op = 90
	OpImageFetch             Op = 95
	OpConvertFToU            Op = 109
	OpConvertFToS            Op = 110
	OpConvertSToF            Op = 111
	OpConvertUToF            Op = 112
	OpUConvert               Op = 113
	OpSConvert               Op = 114
	OpFConvert               Op = 115
	OpBitcast                Op = 124
	OpSNegate                Op = 126
	OpFNegate                Op = 127
	OpIAdd                   Op = 128
	OpFAdd                   Op = 129
	OpISub                   Op = 130
	OpFSub                   Op = 131
	OpIMul                   Op = 132
	OpFMul                   Op = 133
	OpUDiv                   Op = 134
	OpSDiv                   Op = 135
	OpFDiv                   Op = 136
	OpUMod                   Op = 137
	OpSRem                   Op = 138
	OpFRem                   Op = 140
	OpVectorTimesScalar      Op = 142
	OpMatrixTimesScalar      Op = 143
	OpVectorTimesMatrix      Op = 144
	OpMatrixTimesVector      Op = 145
	OpMatrixTimesMatrix      Op = 146
	OpDot                    Op = 148
	OpAny                    Op = 154
	OpAll                    Op = 155
	OpIsNan                  Op = 156
	OpIsInf                  Op = 157
	OpLogicalEqual           Op = 164
	OpLogicalNotEqual        Op = 165
	OpLogicalOr              Op = 166
	OpLogicalAnd             Op = 167
	OpLogicalNot             Op = 168
	OpSelect                 Op = 169
	OpIEqual                 Op = 170
	OpINotEqual              Op = 171
	OpUGreaterThan           Op = 172
	OpSGreaterThan           Op = 173
	OpUGreaterThanEqual      Op = 174
	OpSGreaterThanEqual      Op = 175
	OpULessThan              Op = 176
	OpSLessThan              Op = 177
	OpULessThanEqual         Op = 178
	OpSLessThanEqual         Op = 179
	OpFOrdEqual              Op = 180
	OpFUnordNotEqual         Op = 183
	OpFOrdLessThan           Op = 184
	OpFOrdGreaterThan        Op = 186
	OpFOrdLessThanEqual      Op = 188
	OpFOrdGreaterThanEqual   Op = 190
	OpShiftRightLogical      Op = 194
	OpShiftRightArithmetic   Op = 195
	OpShiftLeftLogical       Op = 196
	OpBitwiseOr              Op = 197
	OpBitwiseXor             Op = 198
	OpBitwiseAnd             Op = 199
	OpNot                    Op = 200
	OpDPdx                   Op = 207
	OpDPdy                   Op = 208
	OpFwidth                 Op = 209
	OpControlBarrier         Op = 224
	OpLoopMerge              Op = 246
	OpSelectionMerge         Op = 247
	OpLabel                  Op = 248
	OpBranch                 Op = 249
	OpBranchConditional      Op = 250
	OpKill                   Op = 252
	OpReturn                 Op = 253
	OpReturnValue            Op = 254
	OpUnreachable            Op = 255
	OpGroupNonUniformElect   Op = 333
	OpGroupNonUniformAll     Op = 334
	OpGroupNonUniformAny     Op = 335
	OpGroupNonUniformIAdd    Op = 349
	OpGroupNonUniformFAdd    Op = 350
	OpGroupNonUniformSMin    Op = 353
	OpGroupNonUniformUMin    Op = 354
	OpGroupNonUniformFMin    Op = 355
	OpGroupNonUniformSMax    Op = 356
	OpGroupNonUniformUMax    Op = 357
	OpGroupNonUniformFMax    Op = 358
)

var opNames = map[Op]string{
	OpNop: "OpNop", OpSource: "OpSource", OpName: "OpName", OpMemberName: "OpMemberName",
	OpExtInstImport: "OpExtInstImport", OpExtInst: "OpExtInst", OpMemoryModel: "OpMemoryModel",
	OpEntryPoint: "OpEntryPoint", OpExecutionMode: "OpExecutionMode", OpCapability: "OpCapability",
	OpTypeVoid: "OpTypeVoid", OpTypeBool: "OpTypeBool", OpTypeInt: "OpTypeInt", OpTypeFloat: "OpTypeFloat",
	OpTypeVector: "OpTypeVector", OpTypeMatrix: "OpTypeMatrix", OpTypeImage: "OpTypeImage",
	OpTypeSampler: "OpTypeSampler", OpTypeSampledImage: "OpTypeSampledImage", OpTypeArray: "OpTypeArray",
	OpTypeRuntimeArray: "OpTypeRuntimeArray", OpTypeStruct: "OpTypeStruct", OpTypePointer: "OpTypePointer",
	OpTypeFunction: "OpTypeFunction", OpConstantTrue: "OpConstantTrue", OpConstantFalse: "OpConstantFalse",
	OpConstant: "OpConstant", OpConstantComposite: "OpConstantComposite", OpFunction: "OpFunction",
	OpFunctionParameter: "OpFunctionParameter", OpFunctionEnd: "OpFunctionEnd", OpFunctionCall: "OpFunctionCall",
	OpVariable: "OpVariable", OpLoad: "OpLoad", OpStore: "OpStore", OpAccessChain: "OpAccessChain",
	OpDecorate: "OpDecorate", OpMemberDecorate: "OpMemberDecorate", OpVectorExtractDynamic: "OpVectorExtractDynamic",
	OpVectorShuffle: "OpVectorShuffle", OpCompositeConstruct: "OpCompositeConstruct",
	OpCompositeExtract: "OpCompositeExtract", OpCompositeInsert: "OpCompositeInsert", OpTranspose: "OpTranspose",
	OpSampledImage: "OpSampledImage", OpImageSampleImplicitLod: "OpImageSampleImplicitLod",
	OpImageSampleExplicitLod: "OpImageSampleExplicitLod", OpImageSampleDrefImplLod: "OpImageSampleDrefImplicitLod",
	OpImageSampleDrefExplLod: "OpImageSampleDrefExplicitLod", OpImageFetch: "OpImageFetch",
	OpConvertFToU: "OpConvertFToU", OpConvertFToS: "OpConvertFToS", OpConvertSToF: "OpConvertSToF",
	OpConvertUToF: "OpConvertUToF", OpUConvert: "OpUConvert", OpSConvert: "OpSConvert", OpFConvert: "OpFConvert",
	OpBitcast: "OpBitcast", OpSNegate: "OpSNegate", OpFNegate: "OpFNegate", OpIAdd: "OpIAdd", OpFAdd: "OpFAdd",
	OpISub: "OpISub", OpFSub: "OpFSub", OpIMul: "OpIMul", OpFMul: "OpFMul", OpUDiv: "OpUDiv", OpSDiv: "OpSDiv",
	OpFDiv: "OpFDiv", OpUMod: "OpUMod", OpSRem: "OpSRem", OpFRem: "OpFRem",
	OpVectorTimesScalar: "OpVectorTimesScalar", OpMatrixTimesScalar: "OpMatrixTimesScalar",
	OpVectorTimesMatrix: "OpVectorTimesMatrix", OpMatrixTimesVector: "OpMatrixTimesVector",
	OpMatrixTimesMatrix: "OpMatrixTimesMatrix", OpDot: "OpDot", OpAny: "OpAny", OpAll: "OpAll",
	OpIsNan: "OpIsNan", OpIsInf: "OpIsInf", OpLogicalEqual: "OpLogicalEqual", OpLogicalNotEqual: "OpLogicalNotEqual",
	OpLogicalOr: "OpLogicalOr", OpLogicalAnd: "OpLogicalAnd", OpLogicalNot: "OpLogicalNot", OpSelect: "OpSelect",
	OpIEqual: "OpIEqual", OpINotEqual: "OpINotEqual", OpUGreaterThan: "OpUGreaterThan",
	OpSGreaterThan: "OpSGreaterThan", OpUGreaterThanEqual: "OpUGreaterThanEqual",
	OpSGreaterThanEqual: "OpSGreaterThanEqual", OpULessThan: "OpULessThan", OpSLessThan: "OpSLessThan",
	OpULessThanEqual: "OpULessThanEqual", OpSLessThanEqual: "OpSLessThanEqual", OpFOrdEqual: "OpFOrdEqual",
	OpFUnordNotEqual: "OpFUnordNotEqual", OpFOrdLessThan: "OpFOrdLessThan", OpFOrdGreaterThan: "OpFOrdGreaterThan",
	OpFOrdLessThanEqual: "OpFOrdLessThanEqual", OpFOrdGreaterThanEqual: "OpFOrdGreaterThanEqual",
	OpShiftRightLogical: "OpShiftRightLogical", OpShiftRightArithmetic: "OpShiftRightArithmetic",
	OpShiftLeftLogical: "OpShiftLeftLogical", OpBitwiseOr: "OpBitwiseOr", OpBitwiseXor: "OpBitwiseXor",
	OpBitwiseAnd: "OpBitwiseAnd", OpNot: "OpNot", OpDPdx: "OpDPdx", OpDPdy: "OpDPdy", OpFwidth: "OpFwidth",
	OpControlBarrier: "OpControlBarrier", OpLoopMerge: "OpLoopMerge", OpSelectionMerge: "OpSelectionMerge",
	OpLabel: "OpLabel", OpBranch: "OpBranch", OpBranchConditional: "OpBranchConditional", OpKill: "OpKill",
	OpReturn: "OpReturn", OpReturnValue: "OpReturnValue", OpUnreachable: "OpUnreachable",
	OpGroupNonUniformElect: "OpGroupNonUniformElect", OpGroupNonUniformAll: "OpGroupNonUniformAll",
	OpGroupNonUniformAny: "OpGroupNonUniformAny", OpGroupNonUniformIAdd: "OpGroupNonUniformIAdd",
	OpGroupNonUniformFAdd: "OpGroupNonUniformFAdd", OpGroupNonUniformSMin: "OpGroupNonUniformSMin",
	OpGroupNonUniformUMin: "OpGroupNonUniformUMin", OpGroupNonUniformFMin: "OpGroupNonUniformFMin",
	OpGroupNonUniformSMax: "OpGroupNonUniformSMax", OpGroupNonUniformUMax: "OpGroupNonUniformUMax",
	OpGroupNonUniformFMax: "OpGroupNonUniformFMax",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", uint16(op))
}

// Capability enables a feature set.
type Capability uint32

const (
	CapabilityMatrix                    Capability = 0
	CapabilityShader                    Capability = 1
	CapabilityGeometry                  Capability = 2
	CapabilityTessellation              Capability = 3
	CapabilityLinkage                   Capability = 5
	CapabilityFloat16                   Capability = 9
	CapabilityFloat64                   Capability = 10
	CapabilityInt64                     Capability = 11
	CapabilitySampleRateShading         Capability = 35
	CapabilitySampled1D                 Capability = 43
	CapabilityGroupNonUniform           Capability = 61
	CapabilityGroupNonUniformVote       Capability = 62
	CapabilityGroupNonUniformArithmetic Capability = 63
)

var capabilityNames = map[Capability]string{
	CapabilityMatrix: "Matrix", CapabilityShader: "Shader", CapabilityGeometry: "Geometry",
	CapabilityTessellation: "Tessellation", CapabilityLinkage: "Linkage", CapabilityFloat16: "Float16",
	CapabilityFloat64: "Float64", CapabilityInt64: "Int64", CapabilitySampleRateShading: "SampleRateShading",
	CapabilitySampled1D: "Sampled1D", CapabilityGroupNonUniform: "GroupNonUniform",
	CapabilityGroupNonUniformVote: "GroupNonUniformVote", CapabilityGroupNonUniformArithmetic: "GroupNonUniformArithmetic",
}

func (c Capability) String() string {
	if s, ok := capabilityNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Capability(%d)", uint32(c))
}

type StorageClass uint32

const (
	StorageUniformConstant StorageClass = 0
	StorageInput           StorageClass = 1
	StorageUniform         StorageClass = 2
	StorageOutput          StorageClass = 3
	StorageWorkgroup       StorageClass = 4
	StoragePrivate         StorageClass = 6
	StorageFunction        StorageClass = 7
)

type Decoration uint32

const (
	DecorationBlock         Decoration = 2
	DecorationBufferBlock   Decoration = 3
	DecorationRowMajor      Decoration = 4
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationNoPerspective Decoration = 13
	DecorationFlat          Decoration = 14
	DecorationCentroid      Decoration = 16
	DecorationSample        Decoration = 17
	DecorationNonWritable   Decoration = 24
	DecorationLocation      Decoration = 30
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

type BuiltIn uint32

const (
	BuiltInPosition             BuiltIn = 0
	BuiltInPrimitiveID          BuiltIn = 7
	BuiltInFragCoord            BuiltIn = 15
	BuiltInFrontFacing          BuiltIn = 17
	BuiltInSampleID             BuiltIn = 18
	BuiltInFragDepth            BuiltIn = 22
	BuiltInWorkgroupID          BuiltIn = 26
	BuiltInLocalInvocationID    BuiltIn = 27
	BuiltInGlobalInvocationID   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
	BuiltInVertexIndex          BuiltIn = 42
	BuiltInInstanceIndex        BuiltIn = 43
)

var builtInNames = map[BuiltIn]string{
	BuiltInPosition: "Position", BuiltInPrimitiveID: "PrimitiveId", BuiltInFragCoord: "FragCoord",
	BuiltInFrontFacing: "FrontFacing", BuiltInSampleID: "SampleId", BuiltInFragDepth: "FragDepth",
	BuiltInWorkgroupID: "WorkgroupId", BuiltInLocalInvocationID: "LocalInvocationId",
	BuiltInGlobalInvocationID: "GlobalInvocationId", BuiltInLocalInvocationIndex: "LocalInvocationIndex",
	BuiltInVertexIndex: "VertexIndex", BuiltInInstanceIndex: "InstanceIndex",
}

func (b BuiltIn) String() string {
	if name, ok := builtInNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BuiltIn(%d)", uint32(b))
}

type ExecutionModel uint32

const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5
)

type ExecutionMode uint32

const (
	ExecutionModeInvocations     ExecutionMode = 0
	ExecutionModeSpacingEqual    ExecutionMode = 1
	ExecutionModeVertexOrderCw   ExecutionMode = 4
	ExecutionModeOriginUpperLeft ExecutionMode = 7
	ExecutionModeDepthReplacing  ExecutionMode = 12
	ExecutionModeLocalSize       ExecutionMode = 17
	ExecutionModeInputPoints     ExecutionMode = 19
	ExecutionModeTriangles       ExecutionMode = 22
	ExecutionModeOutputVertices  ExecutionMode = 26
	ExecutionModeOutputPoints    ExecutionMode = 27
)

const (
	addressingLogical uint32 = 0
	memoryGLSL450     uint32 = 1
)

// Function, selection and loop control masks.
const (
	functionControlNone   uint32 = 0
	selectionControlNone  uint32 = 0
	loopControlNone       uint32 = 0
	loopControlUnroll     uint32 = 1
	loopControlDontUnroll uint32 = 2
)

// Image operand masks.
const (
	imageOperandBias uint32 = 0x1
	imageOperandLod  uint32 = 0x2
)

// Scopes and memory semantics for barriers and group operations.
const (
	scopeWorkgroup           uint32 = 2
	scopeSubgroup            uint32 = 3
	semanticsAcquireRelease  uint32 = 0x8
	semanticsWorkgroupMemory uint32 = 0x100
	groupOperationReduce     uint32 = 0
)

// OpTypeImage operands.
const (
	imageDim1D         uint32 = 0
	imageDim2D         uint32 = 1
	imageDim3D         uint32 = 2
	imageDimCube       uint32 = 3
	imageSampled       uint32 = 1
	imageFormatUnknown uint32 = 0
)

const glslStd450 = "GLSL.std.450"

// GLSL.std.450 extended instruction numbers.
const (
	glslRound       uint32 = 1
	glslRoundEven   uint32 = 2
	glslTrunc       uint32 = 3
	glslFAbs        uint32 = 4
	glslSAbs        uint32 = 5
	glslFSign       uint32 = 6
	glslSSign       uint32 = 7
	glslFloor       uint32 = 8
	glslCeil        uint32 = 9
	glslFract       uint32 = 10
	glslRadians     uint32 = 11
	glslDegrees     uint32 = 12
	glslSin         uint32 = 13
	glslCos         uint32 = 14
	glslTan         uint32 = 15
	glslAsin        uint32 = 16
	glslAcos        uint32 = 17
	glslAtan        uint32 = 18
	glslSinh        uint32 = 19
	glslCosh        uint32 = 20
	glslTanh        uint32 = 21
	glslAtan2       uint32 = 25
	glslPow         uint32 = 26
	glslExp         uint32 = 27
	glslLog         uint32 = 28
	glslExp2        uint32 = 29
	glslLog2        uint32 = 30
	glslSqrt        uint32 = 31
	glslInvSqrt     uint32 = 32
	glslDeterminant uint32 = 33
	glslFMin        uint32 = 37
	glslUMin        uint32 = 38
	glslSMin        uint32 = 39
	glslFMax        uint32 = 40
	glslUMax        uint32 = 41
	glslSMax        uint32 = 42
	glslFClamp      uint32 = 43
	glslUClamp      uint32 = 44
	glslSClamp      uint32 = 45
	glslFMix        uint32 = 46
	glslStep        uint32 = 48
	glslSmoothStep  uint32 = 49
	glslFma         uint32 = 50
	glslLength      uint32 = 66
	glslDistance    uint32 = 67
	glslCross       uint32 = 68
	glslNormalize   uint32 = 69
	glslFaceForward uint32 = 70
	glslReflect     uint32 = 71
	glslRefract     uint32 = 72
)
